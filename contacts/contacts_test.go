package contacts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ramtinhossinbiki-afk/payam-resan2/db"
)

func setupContactsDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "contacts.sqlite")
	database, err := db.InitSQLite(dbPath)
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	prevDB := db.DB
	db.DB = database
	t.Cleanup(func() {
		db.DB = prevDB
		_ = database.Close()
	})
}

func insertTestUser(t *testing.T, username, code string) {
	t.Helper()
	_, err := db.DB.Exec(
		`INSERT INTO users (username, connection_code, created_at) VALUES (?, ?, ?)`,
		username, code, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("insert test user %s: %v", username, err)
	}
}

func addContactRequest(t *testing.T, userCode, contactCode string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	payload, err := json.Marshal(map[string]string{"contact_code": contactCode})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodPost, "/add_contact", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set("userCode", userCode)

	HandleAddContact(c)

	var resp map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func TestAddContactIsIdempotent(t *testing.T) {
	setupContactsDB(t)
	insertTestUser(t, "alice", "1111111111")
	insertTestUser(t, "bob", "2222222222")

	for i := 0; i < 2; i++ {
		rec, resp := addContactRequest(t, "2222222222", "1111111111")
		if rec.Code != 200 {
			t.Fatalf("attempt %d: expected 200, got %d (%s)", i, rec.Code, rec.Body.String())
		}
		if resp["contact_name"] != "alice" {
			t.Fatalf("attempt %d: expected contact_name alice, got %v", i, resp["contact_name"])
		}
	}

	var count int
	if err := db.DB.QueryRow(`SELECT COUNT(*) FROM contacts WHERE user_code = ? AND contact_code = ?`,
		"2222222222", "1111111111").Scan(&count); err != nil {
		t.Fatalf("count contacts: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one contact edge, got %d", count)
	}
}

func TestAddContactRejectsSelf(t *testing.T) {
	setupContactsDB(t)
	insertTestUser(t, "alice", "1111111111")

	rec, resp := addContactRequest(t, "1111111111", "1111111111")
	if rec.Code != 400 {
		t.Fatalf("expected 400 for self-add, got %d", rec.Code)
	}
	if resp["error"] != "Cannot add yourself" {
		t.Fatalf("unexpected error message: %v", resp["error"])
	}
}

func TestAddContactUnknownCode(t *testing.T) {
	setupContactsDB(t)
	insertTestUser(t, "alice", "1111111111")

	rec, resp := addContactRequest(t, "1111111111", "9999999999")
	if rec.Code != 404 {
		t.Fatalf("expected 404 for unknown contact code, got %d", rec.Code)
	}
	if resp["error"] != "User not found" {
		t.Fatalf("unexpected error message: %v", resp["error"])
	}
}

func TestGetContacts(t *testing.T) {
	setupContactsDB(t)
	insertTestUser(t, "alice", "1111111111")
	insertTestUser(t, "bob", "2222222222")

	if rec, _ := addContactRequest(t, "2222222222", "1111111111"); rec.Code != 200 {
		t.Fatalf("add contact failed: %d", rec.Code)
	}

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/contacts", nil)
	c.Set("userCode", "2222222222")

	HandleGetContacts(c)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected one contact, got %d", len(resp))
	}
	if resp[0]["contact_code"] != "1111111111" || resp[0]["contact_name"] != "alice" {
		t.Fatalf("unexpected contact entry: %v", resp[0])
	}

	// The edge is directed: alice has no contacts yet
	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/contacts", nil)
	c.Set("userCode", "1111111111")

	HandleGetContacts(c)

	resp = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 0 {
		t.Fatalf("expected no contacts for alice, got %d", len(resp))
	}
}
