package strategy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSpreadsheetExtractCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comps.csv")
	csvData := "Address,Sale Price,Beds\n1 First St,\"$200,000\",3\n2 Second St,,4\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	out, err := NewSpreadsheet(nil).Extract(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, out.Tables, 1)
	rows := out.Tables[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "1 First St", rows[0]["Address"])
	assert.Equal(t, "$200,000", rows[0]["Sale Price"])
	assert.Equal(t, "", rows[1]["Sale Price"])

	require.Len(t, out.Blocks, 1)
	assert.Equal(t, 1.0, out.Blocks[0].Confidence)
	assert.Equal(t, "sheet", out.Blocks[0].Metadata["source"])
	assert.Contains(t, out.Blocks[0].Text, "Address | Sale Price | Beds")
}

func TestSpreadsheetExtractXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comps.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Address", "Sale Price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"1 First St", "$200,000"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	out, err := NewSpreadsheet(nil).Extract(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, out.Tables, 1)
	require.Len(t, out.Tables[0].Rows, 1)
	assert.Equal(t, "1 First St", out.Tables[0].Rows[0]["Address"])
	require.Len(t, out.Blocks, 1)
	assert.Equal(t, "Sheet1", out.Blocks[0].Metadata["sheet"])
}

func TestSpreadsheetExtractBlankHeadersSynthesized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(",Sale Price\nval,100\n"), 0o644))

	out, err := NewSpreadsheet(nil).Extract(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, out.Tables, 1)
	assert.Equal(t, "val", out.Tables[0].Rows[0]["column_1"])
}

func TestSpreadsheetExtractLegacyXLSDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.xls")
	require.NoError(t, os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0}, 0o644))

	out, err := NewSpreadsheet(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, out.Tables)
	assert.NotEmpty(t, out.Warnings)
}

func TestSpreadsheetSupports(t *testing.T) {
	s := NewSpreadsheet(nil)
	assert.True(t, s.Supports("text/csv", "x.csv"))
	assert.True(t, s.Supports("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "x.xlsx"))
	assert.True(t, s.Supports("application/vnd.ms-excel", "x.xls"))
	assert.False(t, s.Supports("application/pdf", "x.pdf"))
}
