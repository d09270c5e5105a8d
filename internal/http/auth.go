package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/entities"
)

type AuthController struct {
	service *auth.Service
}

func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

type loginRequest struct {
	// The login form labels this field "username" but it carries the
	// account email.
	Username string `json:"username" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string         `json:"access_token"`
	User        *entities.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (controller *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := controller.service.Authenticate(req.Username, req.Password)
	if err != nil {
		respondMessage(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := controller.service.IssueToken(user)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	respondData(c, http.StatusOK, loginResponse{AccessToken: token, User: user})
}

// Logout acknowledges the logout. Tokens are stateless, so discarding
// the client's copy is the whole operation.
func (controller *AuthController) Logout(c *gin.Context) {
	respondData(c, http.StatusOK, "ok")
}

// Account returns the authenticated user's record.
func (controller *AuthController) Account(c *gin.Context) {
	claims := &auth.Claims{UserID: auth.GetUserID(c)}
	user, err := controller.service.CurrentUser(claims)
	if err != nil {
		respondMessage(c, http.StatusUnauthorized, "account not found")
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": user})
}
