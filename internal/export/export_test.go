package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/storage"
	"github.com/hively/hively/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seededExporter(t *testing.T) (*Exporter, *storage.Store) {
	t.Helper()

	store := testutil.SetupStore(t)
	ctx := context.Background()

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)

	groceries := testutil.Expense("Groceries", 54.20, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), categories[0].ID)
	require.NoError(t, store.AddExpense(ctx, &groceries))

	ticket := testutil.Expense("Train ticket", 12, time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local), categories[1].ID)
	ticket.PaymentMode = model.PaymentModeUPI
	require.NoError(t, store.AddExpense(ctx, &ticket))

	return New(store), store
}

func TestExportJSON(t *testing.T) {
	exporter, _ := seededExporter(t)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(context.Background(), &buf, FormatJSON))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Groceries", records[0]["title"])
	assert.Equal(t, "Food", records[0]["category"])
	assert.Equal(t, "2025-03-01", records[0]["date"])
	assert.InDelta(t, 54.20, records[0]["amount"], 0.001)
}

func TestExportCSV(t *testing.T) {
	exporter, _ := seededExporter(t)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(context.Background(), &buf, FormatCSV))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "CSV export must start with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Title", "Amount", "Date", "Category", "Payment Mode"}, rows[0])
	assert.Equal(t, "Groceries", rows[1][1])
	assert.Equal(t, "54.20", rows[1][2])
	assert.Equal(t, "UPI", rows[2][5])
}

func TestExportXLSX(t *testing.T) {
	exporter, _ := seededExporter(t)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(context.Background(), &buf, FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows("Expenses")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0][1])
	assert.Equal(t, "Train ticket", rows[2][1])
	assert.Equal(t, "Travel", rows[2][4])
}

func TestExportDanglingCategory(t *testing.T) {
	exporter, store := seededExporter(t)
	ctx := context.Background()

	extra := model.Category{Name: "Subscriptions"}
	require.NoError(t, store.AddCategory(ctx, &extra))
	netflix := testutil.Expense("Streaming", 15.99, time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local), extra.ID)
	require.NoError(t, store.AddExpense(ctx, &netflix))
	require.NoError(t, store.DeleteCategory(ctx, extra.ID))

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, &buf, FormatJSON))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "Uncategorized", records[2]["category"])
}

func TestExportUnknownFormat(t *testing.T) {
	exporter, _ := seededExporter(t)

	var buf bytes.Buffer
	err := exporter.Export(context.Background(), &buf, Format("pdf"))
	assert.Error(t, err)
}
