// Package importer parses bulk-import spreadsheets for the user table.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// UserRow is one spreadsheet row mapped by the header row's cell values.
// No schema validation happens here: whatever the sheet contains is
// forwarded and the backend decides per row.
type UserRow struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ParseUserSheet reads every worksheet of an xlsx file. The first row of
// each sheet names the columns; recognized headers are fullName, email
// and phone (case-insensitive). Sheets without a header row are skipped.
func ParseUserSheet(r io.Reader) ([]UserRow, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer workbook.Close()

	var parsed []UserRow
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) < 1 {
			continue
		}

		headers := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			headers[i] = strings.ToLower(strings.TrimSpace(h))
		}

		for _, cells := range rows[1:] {
			row := UserRow{}
			empty := true
			for i, cell := range cells {
				if i >= len(headers) || cell == "" {
					continue
				}
				empty = false
				switch headers[i] {
				case "fullname":
					row.FullName = cell
				case "email":
					row.Email = cell
				case "phone":
					row.Phone = cell
				}
			}
			if !empty {
				parsed = append(parsed, row)
			}
		}
	}

	return parsed, nil
}

// WithDefaultPassword assigns the configured import password to every
// row, returning the batch ready for bulk creation.
func WithDefaultPassword(rows []UserRow, password string) []UserRow {
	out := make([]UserRow, len(rows))
	for i, row := range rows {
		row.Password = password
		out[i] = row
	}
	return out
}
