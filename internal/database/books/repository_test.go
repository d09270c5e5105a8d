package books

import (
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/listquery"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{}, &entities.Category{})
	require.NoError(t, err)

	for _, name := range []string{"Fiction", "History", "Comics"} {
		require.NoError(t, db.Create(&entities.Category{Name: name}).Error)
	}

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func newBook(title, author string, price int) *entities.Book {
	return &entities.Book{
		MainText:  title,
		Author:    author,
		Price:     price,
		Category:  "Fiction",
		Quantity:  10,
		Thumbnail: "thumb.png",
		Slider:    []string{"s1.png", "s2.png"},
	}
}

func listQuery(t *testing.T, raw string) listquery.Query {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return listquery.Parse(values, Allowed)
}

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := newBook("The Hobbit", "Tolkien", 150000)
	err := repo.Create(book)

	require.NoError(t, err)
	assert.NotZero(t, book.ID)
}

func TestRepository_Create_UnknownCategory(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := newBook("The Hobbit", "Tolkien", 150000)
	book.Category = "Cryptozoology"

	assert.ErrorIs(t, repo.Create(book), ErrUnknownCategory)
}

func TestRepository_SliderRoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := newBook("The Hobbit", "Tolkien", 150000)
	require.NoError(t, repo.Create(book))

	fetched, err := repo.GetByID(book.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"s1.png", "s2.png"}, fetched.Slider)
}

func TestRepository_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := newBook("The Hobbit", "Tolkien", 150000)
	require.NoError(t, repo.Create(book))

	changed := *newBook("The Hobbit (2nd ed)", "J.R.R. Tolkien", 180000)
	changed.Category = "History"
	changed.Slider = []string{"new.png"}

	updated, err := repo.Update(book.ID, changed)

	require.NoError(t, err)
	assert.Equal(t, "The Hobbit (2nd ed)", updated.MainText)
	assert.Equal(t, "History", updated.Category)
	assert.Equal(t, []string{"new.png"}, updated.Slider)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := newBook("The Hobbit", "Tolkien", 150000)
	require.NoError(t, repo.Create(book))

	require.NoError(t, repo.Delete(book.ID))
	_, err := repo.GetByID(book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	assert.ErrorIs(t, repo.Delete(book.ID), ErrBookNotFound)
}

func TestRepository_List_FilterAndSort(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newBook("The Hobbit", "Tolkien", 150000)))
	require.NoError(t, repo.Create(newBook("The Silmarillion", "Tolkien", 220000)))
	require.NoError(t, repo.Create(newBook("Dune", "Herbert", 180000)))

	page, err := repo.List(listQuery(t, "current=1&pageSize=10&author=/tolkien/i&sort=-price"))

	require.NoError(t, err)
	require.Len(t, page.Result, 2)
	assert.Equal(t, "The Silmarillion", page.Result[0].MainText)
	assert.Equal(t, "The Hobbit", page.Result[1].MainText)
	assert.Equal(t, int64(2), page.Meta.Total)
}

func TestRepository_Categories(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	names, err := repo.Categories()

	require.NoError(t, err)
	assert.Equal(t, []string{"Comics", "Fiction", "History"}, names)
}

func TestRepository_ReferencedImages(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newBook("The Hobbit", "Tolkien", 150000)))

	referenced, err := repo.ReferencedImages()

	require.NoError(t, err)
	assert.True(t, referenced["thumb.png"])
	assert.True(t, referenced["s1.png"])
	assert.True(t, referenced["s2.png"])
	assert.False(t, referenced["orphan.png"])
}
