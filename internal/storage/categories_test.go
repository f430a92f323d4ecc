package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hively/hively/internal/bus"
	"github.com/hively/hively/internal/model"
)

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	changes := bus.New()
	store := newTestStore(t, changes)

	var notifications int
	changes.Subscribe(func() { notifications++ })

	c := model.Category{Name: "Rent"}
	require.NoError(t, store.AddCategory(ctx, &c))
	assert.Positive(t, c.ID)
	assert.False(t, c.IsDefault)
	assert.Equal(t, 1, notifications)

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 9)
}

func TestAddCategoryDuplicateName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	c := model.Category{Name: "Food"}
	err := store.AddCategory(ctx, &c)
	assert.Error(t, err, "seeded name is taken")
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	t.Run("default categories are protected", func(t *testing.T) {
		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)

		err = store.DeleteCategory(ctx, categories[0].ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDefaultCategory)
	})

	t.Run("user categories are deletable", func(t *testing.T) {
		c := model.Category{Name: "Pets"}
		require.NoError(t, store.AddCategory(ctx, &c))

		require.NoError(t, store.DeleteCategory(ctx, c.ID))

		got, err := store.GetCategory(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("missing key is not an error", func(t *testing.T) {
		assert.NoError(t, store.DeleteCategory(ctx, 9999))
	})
}
