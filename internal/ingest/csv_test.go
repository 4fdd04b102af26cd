package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV_BaseColumns(t *testing.T) {
	content := strings.Join([]string{
		"InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country",
		"536365,85123A,WHITE HANGING HEART,6,2010-12-01 08:26:00,2.55,17850,United Kingdom",
		"536366,22633,HAND WARMER UNION JACK,6,2010-12-01 08:28:00,1.85,17850,United Kingdom",
	}, "\n")
	path := writeTempCSV(t, content)

	rows, err := LoadCSV(path, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "536365", rows[0].InvoiceNo)
	assert.Equal(t, "2.55", rows[0].UnitPrice)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 3, rows[1].Line)
}

func TestLoadCSV_BOMAndDerivedColumns(t *testing.T) {
	// Exported files carry a BOM and derived columns after the base
	// eight; both must be tolerated on reimport.
	content := "\uFEFF" + strings.Join([]string{
		"InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country,Total,Year,Month,MonthName,Day,Hour,DayOfWeek,Date",
		"536365,85123A,WHITE HANGING HEART,6,2010-12-01 08:26:00,2.55,17850,United Kingdom,15.3,2010,12,December,1,8,Wednesday,2010-12-01",
	}, "\n")
	path := writeTempCSV(t, content)

	rows, err := LoadCSV(path, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "536365", rows[0].InvoiceNo)
	assert.Equal(t, "United Kingdom", rows[0].Country)
}

func TestLoadCSV_MissingColumn(t *testing.T) {
	content := "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,Country\n"
	path := writeTempCSV(t, content)

	_, err := LoadCSV(path, 0)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "CustomerID", schemaErr.Column)
}

func TestLoadCSV_NotFound(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), 0)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestLoadCSV_MaxRows(t *testing.T) {
	content := strings.Join([]string{
		"InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country",
		"A,1,X,1,2010-12-01 08:00:00,1.00,1,France",
		"B,2,Y,2,2010-12-01 09:00:00,2.00,2,France",
		"C,3,Z,3,2010-12-01 10:00:00,3.00,3,France",
	}, "\n")
	path := writeTempCSV(t, content)

	rows, err := LoadCSV(path, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
