package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/listquery"
)

type BooksController struct {
	repo *books.Repository
}

func NewBooksController(repo *books.Repository) *BooksController {
	return &BooksController{repo: repo}
}

// parseListQuery interprets the raw query string against an entity's
// whitelist. The raw string is used because clients do not URL-escape
// filter values.
func parseListQuery(c *gin.Context, allowed listquery.Allowed) listquery.Query {
	return listquery.Parse(c.Request.URL.Query(), allowed)
}

// List serves the books admin table.
func (controller *BooksController) List(c *gin.Context) {
	query := parseListQuery(c, books.Allowed)

	page, err := controller.repo.List(query)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	respondData(c, http.StatusOK, page)
}

type bookRequest struct {
	MainText  string   `json:"mainText" binding:"required"`
	Author    string   `json:"author" binding:"required"`
	Price     int      `json:"price" binding:"required,min=1"`
	Category  string   `json:"category" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Thumbnail string   `json:"thumbnail" binding:"required"`
	Slider    []string `json:"slider" binding:"required,min=1,max=5"`
}

func (req bookRequest) entity() entities.Book {
	return entities.Book{
		MainText:  req.MainText,
		Author:    req.Author,
		Price:     req.Price,
		Category:  req.Category,
		Quantity:  req.Quantity,
		Thumbnail: req.Thumbnail,
		Slider:    req.Slider,
	}
}

// Create adds a catalog entry. The thumbnail filename must already
// exist from a prior upload call.
func (controller *BooksController) Create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	book := req.entity()
	if err := controller.repo.Create(&book); err != nil {
		if errors.Is(err, books.ErrUnknownCategory) {
			respondMessage(c, http.StatusBadRequest, "unknown category: "+req.Category)
			return
		}
		respondInternalError(c, err, "create book")
		return
	}
	respondData(c, http.StatusCreated, book)
}

type updateBookRequest struct {
	ID uint `json:"_id" binding:"required"`
	bookRequest
}

// Update rewrites a catalog entry.
func (controller *BooksController) Update(c *gin.Context) {
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	book, err := controller.repo.Update(req.ID, req.entity())
	if err != nil {
		switch {
		case errors.Is(err, books.ErrBookNotFound):
			respondMessage(c, http.StatusNotFound, "book not found")
		case errors.Is(err, books.ErrUnknownCategory):
			respondMessage(c, http.StatusBadRequest, "unknown category: "+req.Category)
		default:
			respondInternalError(c, err, "update book")
		}
		return
	}
	respondData(c, http.StatusOK, book)
}

// Delete removes a book by ID.
func (controller *BooksController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := controller.repo.Delete(uint(id)); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondMessage(c, http.StatusNotFound, "book not found")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}
	respondData(c, http.StatusOK, "deleted")
}

// Categories returns the flat list of category names used by the Add
// and Update book dialogs.
func (controller *BooksController) Categories(c *gin.Context) {
	names, err := controller.repo.Categories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	respondData(c, http.StatusOK, names)
}
