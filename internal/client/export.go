package client

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mrlokans/bookstore/internal/entities"
)

// CSV export of whatever rows a table currently shows. Only the visible
// page is exported, matching the on-screen state.

const exportTimeLayout = time.RFC3339

// ExportUsersCSV writes the users table's rows as CSV with a header row.
func ExportUsersCSV(w io.Writer, rows []entities.User) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "fullName", "email", "phone", "role", "createdAt"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, user := range rows {
		record := []string{
			strconv.FormatUint(uint64(user.ID), 10),
			user.FullName,
			user.Email,
			user.Phone,
			string(user.Role),
			user.CreatedAt.Format(exportTimeLayout),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportBooksCSV writes the books table's rows as CSV with a header row.
func ExportBooksCSV(w io.Writer, rows []entities.Book) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "mainText", "author", "price", "category", "quantity", "sold", "createdAt"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, book := range rows {
		record := []string{
			strconv.FormatUint(uint64(book.ID), 10),
			book.MainText,
			book.Author,
			strconv.Itoa(book.Price),
			book.Category,
			strconv.Itoa(book.Quantity),
			strconv.Itoa(book.Sold),
			book.CreatedAt.Format(exportTimeLayout),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
