package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/uploads"
)

type testServer struct {
	router     *gin.Engine
	db         *database.Database
	usersRepo  *users.Repository
	booksRepo  *books.Repository
	auth       *auth.Service
	adminToken string
	userToken  string
}

func setupServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	usersRepo := users.NewRepository(db.DB)
	booksRepo := books.NewRepository(db.DB)
	authService := auth.NewService(usersRepo, config.Auth{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		BcryptCost:  4,
	})

	store, err := uploads.NewStore(t.TempDir(), 2)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		AuthService: authService,
		UsersRepo:   usersRepo,
		BooksRepo:   booksRepo,
		UploadStore: store,
	})

	server := &testServer{
		router:    router,
		db:        db,
		usersRepo: usersRepo,
		booksRepo: booksRepo,
		auth:      authService,
	}
	server.adminToken = server.seedAccount(t, "admin@example.com", entities.UserRoleAdmin)
	server.userToken = server.seedAccount(t, "user@example.com", entities.UserRoleUser)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return server, cleanup
}

func (s *testServer) seedAccount(t *testing.T, email string, role entities.UserRole) string {
	t.Helper()

	hash, err := auth.HashPassword("password123", 4)
	require.NoError(t, err)

	user := &entities.User{
		FullName:     "Seeded " + string(role),
		Email:        email,
		Phone:        "0123456789",
		Role:         role,
		PasswordHash: hash,
	}
	require.NoError(t, s.usersRepo.Create(user))

	token, err := s.auth.IssueToken(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestLogin(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	t.Run("valid credentials return token and user", func(t *testing.T) {
		w := server.request(t, "POST", "/api/v1/auth/login", "",
			gin.H{"username": "admin@example.com", "password": "password123"})

		require.Equal(t, http.StatusOK, w.Code)
		envelope := decodeEnvelope(t, w)
		data := envelope["data"].(map[string]any)
		assert.NotEmpty(t, data["access_token"])
		user := data["user"].(map[string]any)
		assert.Equal(t, "admin@example.com", user["email"])
		// Password hash never leaves the server.
		assert.NotContains(t, w.Body.String(), "PasswordHash")
	})

	t.Run("wrong password yields message-only envelope", func(t *testing.T) {
		w := server.request(t, "POST", "/api/v1/auth/login", "",
			gin.H{"username": "admin@example.com", "password": "nope"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		envelope := decodeEnvelope(t, w)
		assert.Nil(t, envelope["data"])
		assert.NotEmpty(t, envelope["message"])
	})
}

func TestAccountAndLogout(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	w := server.request(t, "GET", "/api/v1/auth/account", server.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	user := envelope["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "user@example.com", user["email"])

	w = server.request(t, "POST", "/api/v1/auth/logout", server.userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = server.request(t, "GET", "/api/v1/auth/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsersList_Protocol(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	for i := 0; i < 12; i++ {
		email := fmt.Sprintf("bulk%02d@example.com", i)
		hash, _ := auth.HashPassword("password123", 4)
		require.NoError(t, server.usersRepo.Create(&entities.User{
			FullName: fmt.Sprintf("Bulk User %02d", i), Email: email,
			Phone: "0123456789", Role: entities.UserRoleUser, PasswordHash: hash,
		}))
	}

	t.Run("meta mirrors requested page", func(t *testing.T) {
		w := server.request(t, "GET", "/api/v1/user?current=2&pageSize=5&sort=-createdAt", server.userToken, nil)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeEnvelope(t, w)["data"].(map[string]any)
		meta := data["meta"].(map[string]any)
		assert.Equal(t, float64(2), meta["current"])
		assert.Equal(t, float64(5), meta["pageSize"])
		assert.Equal(t, float64(14), meta["total"]) // 12 + two seeded accounts
		assert.Len(t, data["result"], 5)
	})

	t.Run("substring filter", func(t *testing.T) {
		w := server.request(t, "GET", "/api/v1/user?current=1&pageSize=10&fullName=/bulk user 03/i", server.userToken, nil)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeEnvelope(t, w)["data"].(map[string]any)
		require.Len(t, data["result"], 1)
	})

	t.Run("empty page is still a success envelope", func(t *testing.T) {
		w := server.request(t, "GET", "/api/v1/user?current=99&pageSize=10", server.userToken, nil)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeEnvelope(t, w)["data"].(map[string]any)
		meta := data["meta"].(map[string]any)
		assert.Equal(t, float64(99), meta["current"])
		assert.Len(t, data["result"], 0)
	})
}

func TestUserCreate_Validation(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	t.Run("bad phone rejected", func(t *testing.T) {
		w := server.request(t, "POST", "/api/v1/user", server.adminToken, gin.H{
			"fullName": "Alice", "email": "alice@example.com",
			"password": "password123", "phone": "12345",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, decodeEnvelope(t, w)["data"])
	})

	t.Run("valid user created", func(t *testing.T) {
		w := server.request(t, "POST", "/api/v1/user", server.adminToken, gin.H{
			"fullName": "Alice", "email": "alice@example.com",
			"password": "password123", "phone": "0123456789",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeEnvelope(t, w)["data"].(map[string]any)
		assert.Equal(t, "alice@example.com", data["email"])
	})

	t.Run("duplicate email fails with backend message", func(t *testing.T) {
		w := server.request(t, "POST", "/api/v1/user", server.adminToken, gin.H{
			"fullName": "Alice Again", "email": "alice@example.com",
			"password": "password123", "phone": "0123456789",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeEnvelope(t, w)["message"], "already registered")
	})
}

func TestUserUpdate_EmailImmutable(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	target, err := server.usersRepo.GetByEmail("user@example.com")
	require.NoError(t, err)

	w := server.request(t, "PUT", "/api/v1/user", server.adminToken, gin.H{
		"_id": target.ID, "fullName": "Renamed User", "phone": "0999999999",
		// Extra field: silently dropped, update never touches email.
		"email": "hijack@example.com",
	})

	require.Equal(t, http.StatusOK, w.Code)
	refreshed, err := server.usersRepo.GetByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed User", refreshed.FullName)
	assert.Equal(t, "user@example.com", refreshed.Email)
}

func TestUserDelete(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	target, err := server.usersRepo.GetByEmail("user@example.com")
	require.NoError(t, err)

	w := server.request(t, "DELETE", fmt.Sprintf("/api/v1/user/%d", target.ID), server.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = server.request(t, "DELETE", fmt.Sprintf("/api/v1/user/%d", target.ID), server.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkCreate_Counts(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	w := server.request(t, "POST", "/api/v1/user/bulk-create", server.adminToken, []gin.H{
		{"fullName": "One", "email": "one@example.com", "phone": "0123456789", "password": "imported-pass"},
		{"fullName": "Dup", "email": "user@example.com", "phone": "0123456789", "password": "imported-pass"},
		{"fullName": "Two", "email": "two@example.com", "phone": "0123456789", "password": "imported-pass"},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["countSuccess"])
	assert.Equal(t, float64(1), data["countError"])
}

func TestBookEndpoints(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	t.Run("create requires known category", func(t *testing.T) {
		w := server.request(t, "POST", "/api/v1/book", server.adminToken, gin.H{
			"mainText": "The Hobbit", "author": "Tolkien", "price": 150000,
			"category": "Cryptozoology", "quantity": 5, "thumbnail": "t.png",
			"slider": []string{"s1.png"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeEnvelope(t, w)["message"], "unknown category")
	})

	t.Run("create requires at least one slider image", func(t *testing.T) {
		for name, payload := range map[string]gin.H{
			"absent": {
				"mainText": "Bare", "author": "Anon", "price": 1000,
				"category": "Fiction", "quantity": 1, "thumbnail": "t.png",
			},
			"empty": {
				"mainText": "Bare", "author": "Anon", "price": 1000,
				"category": "Fiction", "quantity": 1, "thumbnail": "t.png",
				"slider": []string{},
			},
		} {
			w := server.request(t, "POST", "/api/v1/book", server.adminToken, payload)
			assert.Equal(t, http.StatusBadRequest, w.Code, name)
		}
	})

	t.Run("create, update, list, delete", func(t *testing.T) {
		w := server.request(t, "POST", "/api/v1/book", server.adminToken, gin.H{
			"mainText": "The Hobbit", "author": "Tolkien", "price": 150000,
			"category": "Fiction", "quantity": 5, "thumbnail": "t.png",
			"slider": []string{"s1.png"},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		created := decodeEnvelope(t, w)["data"].(map[string]any)
		id := uint(created["id"].(float64))

		w = server.request(t, "PUT", "/api/v1/book", server.adminToken, gin.H{
			"_id": id, "mainText": "The Hobbit (revised)", "author": "Tolkien",
			"price": 180000, "category": "Fiction", "quantity": 4, "thumbnail": "t.png",
			"slider": []string{"s1.png"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = server.request(t, "GET", "/api/v1/book?current=1&pageSize=10&mainText=/hobbit/i&sort=-createdAt", server.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeEnvelope(t, w)["data"].(map[string]any)
		require.Len(t, data["result"], 1)

		w = server.request(t, "DELETE", fmt.Sprintf("/api/v1/book/%d", id), server.adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("slider capped at five", func(t *testing.T) {
		w := server.request(t, "POST", "/api/v1/book", server.adminToken, gin.H{
			"mainText": "Overloaded", "author": "Nobody", "price": 1000,
			"category": "Fiction", "quantity": 1, "thumbnail": "t.png",
			"slider": []string{"1.png", "2.png", "3.png", "4.png", "5.png", "6.png"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCategories(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	w := server.request(t, "GET", "/api/v1/database/category", server.userToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].([]any)
	assert.Contains(t, data, "Fiction")
}

func TestRoleGating(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	w := server.request(t, "POST", "/api/v1/user", server.userToken, gin.H{
		"fullName": "Mallory", "email": "mallory@example.com",
		"password": "password123", "phone": "0123456789",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpload(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("fileImg", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", "/api/v1/file/upload", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+server.adminToken)
	req.Header.Set("upload-type", "book")

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	filename := data["fileName"].(string)
	assert.True(t, strings.HasSuffix(filename, ".png"))

	// The stored file is served back under /images/<entity>/.
	w = server.request(t, "GET", "/images/book/"+filename, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fake png", w.Body.String())
}
