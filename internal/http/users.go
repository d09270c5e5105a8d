package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/importer"
)

type UsersController struct {
	repo *users.Repository
	auth *auth.Service
}

func NewUsersController(repo *users.Repository, authService *auth.Service) *UsersController {
	return &UsersController{repo: repo, auth: authService}
}

// List serves the users admin table. The raw query string carries the
// list protocol; unknown fields are ignored by the parser.
func (controller *UsersController) List(c *gin.Context) {
	query := parseListQuery(c, users.Allowed)

	page, err := controller.repo.List(query)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	respondData(c, http.StatusOK, page)
}

type createUserRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"required,phone"`
}

func (controller *UsersController) create(c *gin.Context, role entities.UserRole) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := controller.auth.HashPassword(req.Password)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	user := &entities.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		PasswordHash: hash,
	}
	if err := controller.repo.Create(user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			respondMessage(c, http.StatusBadRequest, "email is already registered")
			return
		}
		respondInternalError(c, err, "create user")
		return
	}

	respondData(c, http.StatusCreated, user)
}

// Create adds a user through the admin table's Add dialog.
func (controller *UsersController) Create(c *gin.Context) {
	controller.create(c, entities.UserRoleUser)
}

// Register is the public self-registration endpoint. Same field rules
// as Create; always a plain USER role.
func (controller *UsersController) Register(c *gin.Context) {
	controller.create(c, entities.UserRoleUser)
}

type updateUserRequest struct {
	ID       uint   `json:"_id" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required,phone"`
}

// Update rewrites a user's mutable fields. Email is immutable after
// creation and is not part of the request shape.
func (controller *UsersController) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := controller.repo.Update(req.ID, req.FullName, req.Phone)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			respondMessage(c, http.StatusNotFound, "user not found")
			return
		}
		respondInternalError(c, err, "update user")
		return
	}
	respondData(c, http.StatusOK, user)
}

// Delete removes a user by ID.
func (controller *UsersController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := controller.repo.Delete(uint(id)); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			respondMessage(c, http.StatusNotFound, "user not found")
			return
		}
		respondInternalError(c, err, "delete user")
		return
	}
	respondData(c, http.StatusOK, "deleted")
}

type bulkCreateResponse struct {
	CountSuccess int `json:"countSuccess"`
	CountError   int `json:"countError"`
}

// BulkCreate inserts a whole import batch in one call, reporting per-row
// success and failure counts. There is no partial-resubmission path.
func (controller *UsersController) BulkCreate(c *gin.Context) {
	var rows []importer.UserRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		respondMessage(c, http.StatusBadRequest, "request body must be an array of users")
		return
	}
	if len(rows) == 0 {
		respondMessage(c, http.StatusBadRequest, "empty import batch")
		return
	}

	batch := make([]entities.User, 0, len(rows))
	failed := 0
	for _, row := range rows {
		hash, err := controller.auth.HashPassword(row.Password)
		if err != nil {
			failed++
			continue
		}
		batch = append(batch, entities.User{
			FullName:     row.FullName,
			Email:        row.Email,
			Phone:        row.Phone,
			Role:         entities.UserRoleUser,
			PasswordHash: hash,
		})
	}

	created, rejected := controller.repo.BulkCreate(batch)
	respondData(c, http.StatusCreated, bulkCreateResponse{
		CountSuccess: created,
		CountError:   failed + rejected,
	})
}
