package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hively/hively/internal/common"
	"github.com/hively/hively/internal/config"
	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// loadConfig builds the validated configuration from viper.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStore opens the migrated store. Callers own the returned handle.
func initStore(ctx context.Context) (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Database.Path, nil)
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("could not open the expense database at %s", cfg.Database.Path), err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseAmount parses a positive decimal money amount.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative: %s", raw)
	}
	return amount, nil
}

// parseDate parses a YYYY-MM-DD date in local time. Empty means today.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", raw, err)
	}
	return date, nil
}

// parseIDs parses a comma-separated id list.
func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q: %w", part, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// resolveCategory maps a name or numeric id to a category key.
func resolveCategory(ctx context.Context, store *storage.Store, raw string) (int64, error) {
	categories, err := store.GetCategories(ctx)
	if err != nil {
		return 0, err
	}

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		for _, c := range categories {
			if c.ID == id {
				return id, nil
			}
		}
		return 0, fmt.Errorf("%w: no category with id %d", common.ErrNotFound, id)
	}

	for _, c := range categories {
		if strings.EqualFold(c.Name, raw) {
			return c.ID, nil
		}
	}
	if raw == "" {
		for _, c := range categories {
			if c.Name == model.CategoryMiscellaneous {
				return c.ID, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: no category named %q", common.ErrNotFound, raw)
}
