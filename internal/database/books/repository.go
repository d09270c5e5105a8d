// Package books provides database operations for the book catalog.
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/listquery"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrUnknownCategory = errors.New("unknown category")
)

// Allowed whitelists the list-protocol fields for the books table.
var Allowed = listquery.Allowed{
	FilterFields: []string{"mainText", "author", "category"},
	SortFields:   []string{"createdAt", "mainText", "author", "price"},
	DateField:    "createdAt",
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of books matching the query.
func (r *Repository) List(q listquery.Query) (listquery.Page[entities.Book], error) {
	var page listquery.Page[entities.Book]

	var total int64
	if err := r.db.Model(&entities.Book{}).Scopes(q.Scope()).Count(&total).Error; err != nil {
		return page, fmt.Errorf("failed to count books: %w", err)
	}

	result := make([]entities.Book, 0, q.PageSize)
	err := r.db.Scopes(q.Scope()).
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(&result).Error
	if err != nil {
		return page, fmt.Errorf("failed to list books: %w", err)
	}

	page.Result = result
	page.Meta = listquery.NewMeta(q.Current, q.PageSize, total)
	return page, nil
}

// Create inserts a new book after checking its category against the
// server-provided enumeration.
func (r *Repository) Create(book *entities.Book) error {
	if err := r.checkCategory(book.Category); err != nil {
		return err
	}
	if err := r.db.Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// Update rewrites the editable catalog fields of one book.
func (r *Repository) Update(id uint, book entities.Book) (*entities.Book, error) {
	if err := r.checkCategory(book.Category); err != nil {
		return nil, err
	}

	existing, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	existing.MainText = book.MainText
	existing.Author = book.Author
	existing.Price = book.Price
	existing.Category = book.Category
	existing.Quantity = book.Quantity
	existing.Thumbnail = book.Thumbnail
	existing.Slider = book.Slider

	if err := r.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return existing, nil
}

// Delete removes a book.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetByID retrieves a book by ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Categories returns the flat list of category names.
func (r *Repository) Categories() ([]string, error) {
	var names []string
	err := r.db.Model(&entities.Category{}).
		Order("name ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return names, nil
}

// ReferencedImages collects every thumbnail and slider filename still
// attached to a book. The orphan sweep uses it to decide what to keep.
func (r *Repository) ReferencedImages() (map[string]bool, error) {
	var all []entities.Book
	if err := r.db.Select("thumbnail", "slider").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to collect image references: %w", err)
	}

	referenced := make(map[string]bool)
	for _, book := range all {
		if book.Thumbnail != "" {
			referenced[book.Thumbnail] = true
		}
		for _, file := range book.Slider {
			referenced[file] = true
		}
	}
	return referenced, nil
}

func (r *Repository) checkCategory(name string) error {
	var category entities.Category
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownCategory
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}
