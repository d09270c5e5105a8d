package client

import (
	"context"
	"fmt"
	"io"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/importer"
)

// Flows bundle a dialog's full round trip: validate, call the API, then
// refresh the owning table with its current search state. They return
// the backend's record so callers can show it immediately.

// AddUser runs the add-user dialog: create, then one table refresh.
func (c *Client) AddUser(ctx context.Context, table Reloadable, input CreateUserInput) (*entities.User, error) {
	user, err := c.CreateUser(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := table.Reload(ctx); err != nil {
		return user, fmt.Errorf("user created but table refresh failed: %w", err)
	}
	return user, nil
}

// UpdateUserProfile runs the edit-user dialog. Submitting values equal
// to the current record is rejected locally with ErrNoChanges; no
// request is made in that case.
func (c *Client) UpdateUserProfile(ctx context.Context, table Reloadable, current *entities.User, fullName, phone string) (*entities.User, error) {
	if fullName == current.FullName && phone == current.Phone {
		return nil, ErrNoChanges
	}

	user, err := c.UpdateUser(ctx, current.ID, fullName, phone)
	if err != nil {
		return nil, err
	}
	if err := table.Reload(ctx); err != nil {
		return user, fmt.Errorf("user updated but table refresh failed: %w", err)
	}
	return user, nil
}

// RemoveUser runs the delete confirmation: delete, then refresh.
func (c *Client) RemoveUser(ctx context.Context, table Reloadable, id uint) error {
	if err := c.DeleteUser(ctx, id); err != nil {
		return err
	}
	return table.Reload(ctx)
}

// ImageFile is one image attached to the add-book dialog before upload.
type ImageFile struct {
	Name string
	Data io.Reader
}

// BookDraft is the add-book dialog's state: plain fields plus local
// image files not yet uploaded.
type BookDraft struct {
	MainText  string
	Author    string
	Price     int
	Category  string
	Quantity  int
	Thumbnail *ImageFile
	Slider    []ImageFile
}

// AddBook runs the add-book dialog: upload the thumbnail and every
// slider image, create the book with the returned filenames, then
// refresh the table once. A draft without a thumbnail, without slider
// images, or with more than five of them is rejected before any upload
// happens.
func (c *Client) AddBook(ctx context.Context, table Reloadable, draft BookDraft) (*entities.Book, error) {
	if draft.Thumbnail == nil {
		return nil, ErrMissingThumbnail
	}
	if len(draft.Slider) == 0 {
		return nil, ErrMissingSliderImages
	}
	if len(draft.Slider) > entities.MaxSliderImages {
		return nil, ErrTooManySliderImages
	}

	thumbnail, err := c.Upload(ctx, "book", draft.Thumbnail.Name, draft.Thumbnail.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	slider := make([]string, 0, len(draft.Slider))
	for _, image := range draft.Slider {
		name, err := c.Upload(ctx, "book", image.Name, image.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to upload slider image %s: %w", image.Name, err)
		}
		slider = append(slider, name)
	}

	book, err := c.CreateBook(ctx, BookInput{
		MainText:  draft.MainText,
		Author:    draft.Author,
		Price:     draft.Price,
		Category:  draft.Category,
		Quantity:  draft.Quantity,
		Thumbnail: thumbnail,
		Slider:    slider,
	})
	if err != nil {
		return nil, err
	}
	if err := table.Reload(ctx); err != nil {
		return book, fmt.Errorf("book created but table refresh failed: %w", err)
	}
	return book, nil
}

// RemoveBook runs the delete confirmation: delete, then refresh.
func (c *Client) RemoveBook(ctx context.Context, table Reloadable, id uint) error {
	if err := c.DeleteBook(ctx, id); err != nil {
		return err
	}
	return table.Reload(ctx)
}

// BookImageURLs lists the public URLs of a book's images for a detail
// view: thumbnail first, slider images after.
func (c *Client) BookImageURLs(book *entities.Book) []string {
	urls := make([]string, 0, 1+len(book.Slider))
	if book.Thumbnail != "" {
		urls = append(urls, c.ImageURL("book", book.Thumbnail))
	}
	for _, name := range book.Slider {
		urls = append(urls, c.ImageURL("book", name))
	}
	return urls
}

// ImportUsers runs the spreadsheet import dialog: parse the xlsx
// stream, give every row the default password, submit the batch in one
// call, then refresh the table. The backend's per-row counts come back
// verbatim.
func (c *Client) ImportUsers(ctx context.Context, table Reloadable, sheet io.Reader, defaultPassword string) (ImportCounts, error) {
	rows, err := importer.ParseUserSheet(sheet)
	if err != nil {
		return ImportCounts{}, err
	}
	if len(rows) == 0 {
		return ImportCounts{}, fmt.Errorf("spreadsheet contains no user rows")
	}

	counts, err := c.BulkCreateUsers(ctx, importer.WithDefaultPassword(rows, defaultPassword))
	if err != nil {
		return ImportCounts{}, err
	}
	if err := table.Reload(ctx); err != nil {
		return counts, fmt.Errorf("users imported but table refresh failed: %w", err)
	}
	return counts, nil
}
