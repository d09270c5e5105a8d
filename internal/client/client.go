// Package client is the admin-console surface of the bookstore backend
// as a plain Go SDK: typed wrappers over the /api/v1 endpoints, the
// shared envelope decoding, and the table/dialog flows the console is
// built from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/importer"
	"github.com/mrlokans/bookstore/internal/listquery"
)

const defaultTimeout = 30 * time.Second

// UserListBuilder mirrors the user endpoint's whitelist: which fields
// the users table can filter and sort by.
var UserListBuilder = listquery.Builder{
	FilterFields: []string{"fullName", "email"},
	SortFields:   []string{"createdAt", "fullName", "email"},
	DateField:    "createdAt",
}

// BookListBuilder mirrors the book endpoint's whitelist.
var BookListBuilder = listquery.Builder{
	FilterFields: []string{"mainText", "author", "category"},
	SortFields:   []string{"createdAt", "mainText", "author", "price"},
	DateField:    "createdAt",
}

// Client talks to the bookstore API. The bearer token is remembered
// after Login and attached to every subsequent request.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the API at baseURL (no trailing slash
// required).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken installs a previously saved bearer token, e.g. one loaded
// from a TokenFile.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// envelope is the uniform response shape. A present data field means
// success; an absent one means failure and message explains why.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do sends one JSON API call and decodes the envelope into out. A
// missing data field becomes an *APIError regardless of status code.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" || string(env.Data) == "false" {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Session is a successful login: the token plus the account it belongs to.
type Session struct {
	AccessToken string         `json:"access_token"`
	User        *entities.User `json:"user"`
}

// Login authenticates and remembers the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": username, "password": password}, &session)
	if err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

// Logout tells the backend and drops the local token either way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

type accountPayload struct {
	User *entities.User `json:"user"`
}

// Account fetches the record behind the current token.
func (c *Client) Account(ctx context.Context) (*entities.User, error) {
	if c.Token() == "" {
		return nil, ErrNoToken
	}
	var payload accountPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/account", nil, &payload); err != nil {
		return nil, err
	}
	return payload.User, nil
}

// CreateUserInput carries the fields of the add-user dialog. The same
// shape serves self-registration.
type CreateUserInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Register creates an account through the public endpoint.
func (c *Client) Register(ctx context.Context, input CreateUserInput) (*entities.User, error) {
	var user entities.User
	if err := c.do(ctx, http.MethodPost, "/api/v1/user/register", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers fetches one page of the users table.
func (c *Client) ListUsers(ctx context.Context, req listquery.Request) (listquery.Page[entities.User], error) {
	var page listquery.Page[entities.User]
	err := c.do(ctx, http.MethodGet, "/api/v1/user?"+UserListBuilder.Build(req), nil, &page)
	return page, err
}

// CreateUser adds a user via the admin endpoint.
func (c *Client) CreateUser(ctx context.Context, input CreateUserInput) (*entities.User, error) {
	var user entities.User
	if err := c.do(ctx, http.MethodPost, "/api/v1/user", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser rewrites a user's mutable fields. Email cannot change.
func (c *Client) UpdateUser(ctx context.Context, id uint, fullName, phone string) (*entities.User, error) {
	var user entities.User
	err := c.do(ctx, http.MethodPut, "/api/v1/user", map[string]any{
		"_id": id, "fullName": fullName, "phone": phone,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user by ID.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/user/"+strconv.FormatUint(uint64(id), 10), nil, nil)
}

// ImportCounts is the backend's per-row accounting for a bulk insert.
type ImportCounts struct {
	CountSuccess int `json:"countSuccess"`
	CountError   int `json:"countError"`
}

// BulkCreateUsers submits one import batch.
func (c *Client) BulkCreateUsers(ctx context.Context, rows []importer.UserRow) (ImportCounts, error) {
	var counts ImportCounts
	err := c.do(ctx, http.MethodPost, "/api/v1/user/bulk-create", rows, &counts)
	return counts, err
}

// BookInput carries the fields of the add/update book dialogs. Image
// fields hold server-assigned filenames from prior uploads.
type BookInput struct {
	MainText  string   `json:"mainText"`
	Author    string   `json:"author"`
	Price     int      `json:"price"`
	Category  string   `json:"category"`
	Quantity  int      `json:"quantity"`
	Thumbnail string   `json:"thumbnail"`
	Slider    []string `json:"slider,omitempty"`
}

// ListBooks fetches one page of the books table.
func (c *Client) ListBooks(ctx context.Context, req listquery.Request) (listquery.Page[entities.Book], error) {
	var page listquery.Page[entities.Book]
	err := c.do(ctx, http.MethodGet, "/api/v1/book?"+BookListBuilder.Build(req), nil, &page)
	return page, err
}

// CreateBook adds a catalog entry.
func (c *Client) CreateBook(ctx context.Context, input BookInput) (*entities.Book, error) {
	var book entities.Book
	if err := c.do(ctx, http.MethodPost, "/api/v1/book", input, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook rewrites a catalog entry.
func (c *Client) UpdateBook(ctx context.Context, id uint, input BookInput) (*entities.Book, error) {
	var book entities.Book
	payload := map[string]any{
		"_id": id, "mainText": input.MainText, "author": input.Author,
		"price": input.Price, "category": input.Category,
		"quantity": input.Quantity, "thumbnail": input.Thumbnail,
		"slider": input.Slider,
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/book", payload, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes a book by ID.
func (c *Client) DeleteBook(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/book/"+strconv.FormatUint(uint64(id), 10), nil, nil)
}

// Categories fetches the category names for the book dialogs' select box.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, "/api/v1/database/category", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Upload pushes one image and returns the server-assigned filename to
// store against the entity. The entity tag selects the target folder.
func (c *Client) Upload(ctx context.Context, entity, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("fileImg", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/file/upload", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("upload-type", entity)
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	var payload struct {
		FileName string `json:"fileName"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return "", fmt.Errorf("failed to decode data: %w", err)
	}
	return payload.FileName, nil
}

// ImageURL synthesizes the public URL of an uploaded image, as shown by
// detail drawers and gallery previews.
func (c *Client) ImageURL(entity, filename string) string {
	return fmt.Sprintf("%s/images/%s/%s", c.baseURL, entity, filename)
}
