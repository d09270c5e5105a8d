package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sheetBytes(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseUserSheet(t *testing.T) {
	buf := sheetBytes(t, [][]any{
		{"fullName", "email", "phone"},
		{"Alice Doe", "alice@example.com", "0123456789"},
		{"Bob Roe", "bob@example.com", "0987654321"},
	})

	rows, err := ParseUserSheet(buf)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, UserRow{FullName: "Alice Doe", Email: "alice@example.com", Phone: "0123456789"}, rows[0])
	assert.Equal(t, "bob@example.com", rows[1].Email)
}

func TestParseUserSheet_HeaderCaseInsensitive(t *testing.T) {
	buf := sheetBytes(t, [][]any{
		{"FullName", "EMAIL", "Phone"},
		{"Alice Doe", "alice@example.com", "0123456789"},
	})

	rows, err := ParseUserSheet(buf)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice@example.com", rows[0].Email)
}

func TestParseUserSheet_UnknownColumnsIgnored(t *testing.T) {
	buf := sheetBytes(t, [][]any{
		{"fullName", "favouriteColor", "email"},
		{"Alice Doe", "teal", "alice@example.com"},
	})

	rows, err := ParseUserSheet(buf)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice Doe", rows[0].FullName)
	assert.Equal(t, "alice@example.com", rows[0].Email)
}

func TestParseUserSheet_SkipsEmptyRows(t *testing.T) {
	buf := sheetBytes(t, [][]any{
		{"fullName", "email", "phone"},
		{"", "", ""},
		{"Alice Doe", "alice@example.com", "0123456789"},
	})

	rows, err := ParseUserSheet(buf)

	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseUserSheet_NotASpreadsheet(t *testing.T) {
	_, err := ParseUserSheet(bytes.NewReader([]byte("definitely,not,xlsx")))

	assert.Error(t, err)
}

func TestWithDefaultPassword(t *testing.T) {
	rows := []UserRow{
		{FullName: "Alice", Email: "alice@example.com"},
		{FullName: "Bob", Email: "bob@example.com"},
	}

	out := WithDefaultPassword(rows, "s3cret-default")

	for _, row := range out {
		assert.Equal(t, "s3cret-default", row.Password)
	}
	// Input batch untouched.
	assert.Empty(t, rows[0].Password)
}
