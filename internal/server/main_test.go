package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "server-test-secret-0123456789abcdef"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      testJWTSecret,
		Port:           "0",
		DBDriver:       "sqlite",
		DBPath:         ":memory:",
		AllowedOrigins: "*",
		Env:            "test",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// newTestServer builds a server over in-memory SQLite. withRedis adds a
// miniredis instance; otherwise the server runs without Redis.
func newTestServer(t *testing.T, withRedis bool) (*Server, *fiber.App) {
	t.Helper()
	var rdb *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	s, err := NewServerWithDeps(testConfig(), setupTestDB(t), rdb)
	require.NoError(t, err)
	return s, s.NewApp()
}

// doJSON performs a request and returns the status and raw body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "body: %s", raw)
	return v
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Role     int    `json:"role"`
	} `json:"user"`
}

// signUp registers username and returns its token and ID.
func signUp(t *testing.T, app *fiber.App, username string) (string, uint) {
	t.Helper()
	status, raw := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, status, "body: %s", raw)
	res := decode[authBody](t, raw)
	return res.Token, res.User.ID
}

type postBody struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func createPost(t *testing.T, app *fiber.App, token, title string) uint {
	t.Helper()
	status, raw := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
		"title":   title,
		"content": title + " body",
	})
	require.Equal(t, http.StatusCreated, status, "body: %s", raw)
	return decode[postBody](t, raw).ID
}
