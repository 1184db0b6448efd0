package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"git.solsynth.dev/hypernet/polls/pkg/internal/cache"
	"git.solsynth.dev/hypernet/polls/pkg/internal/database"
	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// SetupTestDB points database.C at a fresh in-memory database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenGorm(sqlite.Open(":memory:"), "", false)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.RunMigration(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	previous := database.C
	database.C = db
	t.Cleanup(func() {
		database.C = previous
		_ = sqlDB.Close()
	})

	return db
}

// SetupTestCache enables the view cache for the duration of the test.
func SetupTestCache(t *testing.T) {
	t.Helper()

	if err := cache.NewStore(); err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() {
		cache.S = nil
	})
}

func CreateTestAccount(t *testing.T, db *gorm.DB, name string, isAdmin bool) models.Account {
	t.Helper()

	account := models.Account{
		Name:    name,
		Email:   name + "@example.com",
		IsAdmin: isAdmin,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return account
}

func CreateTestPoll(t *testing.T, db *gorm.DB, owner models.Account, question string, options ...string) models.Poll {
	t.Helper()

	poll := models.Poll{
		Question:  question,
		Options:   options,
		AccountID: owner.ID,
	}
	if err := db.Create(&poll).Error; err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return poll
}

func CountVotes(t *testing.T, db *gorm.DB, pollID string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Vote{}).Where("poll_id = ?", pollID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}

	return count
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, token string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", expected, resp.StatusCode, buf.String())
	}
}

// DecodeJSON decodes the response body into the provided value
func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
