package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmp := t.TempDir()
	t.Setenv("SQLITE_PATH", filepath.Join(tmp, "library.db"))
	t.Setenv("COVER_BASE", filepath.Join(tmp, "covers"))
	jwtSecret = []byte("test-secret")
	initDB()
	r := gin.New()
	setupRoutes(r)
	return r
}

func loginAdmin(t *testing.T, r http.Handler) string {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "admin123"}), "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	token, _ := decode(t, resp)["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %s", resp.Body.String())
	}
	return token
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Wrong password is rejected
	resp := performRequest(r, http.MethodPost, "/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "nope"}), "")
	if resp.Code != 401 {
		t.Fatalf("expected 401 for bad credentials, got %d", resp.Code)
	}

	// 2. Login as the seeded admin
	token := loginAdmin(t, r)

	// 3. Requests without a token are rejected
	resp = performRequest(r, http.MethodGet, "/books", nil, "")
	if resp.Code != 401 {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	// 4. Add a single-copy book
	resp = performRequest(r, http.MethodPost, "/books", jsonBody(t, map[string]any{
		"title": "Bumi Manusia", "author": "Pramoedya Ananta Toer", "isbn": "9789799731234", "total_copy": 1,
	}), token)
	if resp.Code != 201 {
		t.Fatalf("create book failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	body := decode(t, resp)
	bookID := int(body["id"].(float64))
	barcode, _ := body["barcode"].(string)
	wantPrefix := fmt.Sprintf("B-%d-", time.Now().Year())
	if !strings.HasPrefix(barcode, wantPrefix) {
		t.Fatalf("barcode %q does not start with %q", barcode, wantPrefix)
	}

	// 5. Register a member, code auto-generated
	resp = performRequest(r, http.MethodPost, "/members",
		jsonBody(t, map[string]string{"name": "Siti Rahma", "kelas": "XI-A"}), token)
	if resp.Code != 201 {
		t.Fatalf("create member failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	body = decode(t, resp)
	memberID := int(body["id"].(float64))
	code, _ := body["member_code"].(string)
	wantCode := fmt.Sprintf("MBR-%d-0001", time.Now().Year())
	if code != wantCode {
		t.Fatalf("member code = %q, want %q", code, wantCode)
	}

	// 6. Next code in the sequence
	resp = performRequest(r, http.MethodGet, "/members/generate-code", nil, token)
	if got := decode(t, resp)["member_code"]; got != fmt.Sprintf("MBR-%d-0002", time.Now().Year()) {
		t.Fatalf("unexpected next member code: %v", got)
	}

	// 7. Borrow the only copy
	resp = performRequest(r, http.MethodPost, "/loans", jsonBody(t, map[string]any{
		"book_id": bookID, "member_id": memberID, "days": 7,
	}), token)
	if resp.Code != 201 {
		t.Fatalf("borrow failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	loanID := int(decode(t, resp)["id"].(float64))

	// 8. The shelf is now empty
	resp = performRequest(r, http.MethodPost, "/loans", jsonBody(t, map[string]any{
		"book_id": bookID, "member_id": memberID, "days": 7,
	}), token)
	if resp.Code != 409 {
		t.Fatalf("expected 409 out of stock, got %d body=%s", resp.Code, resp.Body.String())
	}
	if msg := decode(t, resp)["error"]; msg != "Stok buku habis" {
		t.Fatalf("unexpected out-of-stock message: %v", msg)
	}

	// 9. One active loan listed
	resp = performRequest(r, http.MethodGet, "/loans/active", nil, token)
	var active []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &active); err != nil || len(active) != 1 {
		t.Fatalf("expected 1 active loan, body=%s", resp.Body.String())
	}

	// 10. Deleting a book with an open loan is blocked
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/books/%d", bookID), nil, token)
	if resp.Code != 409 {
		t.Fatalf("expected 409 deleting loaned book, got %d", resp.Code)
	}

	// 11. Return, then return again
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/loans/%d/return", loanID), nil, token)
	if resp.Code != 200 {
		t.Fatalf("return failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/loans/%d/return", loanID), nil, token)
	if resp.Code != 409 {
		t.Fatalf("expected 409 on double return, got %d", resp.Code)
	}

	// 12. Dashboard reflects the round trip
	resp = performRequest(r, http.MethodGet, "/dashboard/stats", nil, token)
	stats := decode(t, resp)
	if stats["total_books"].(float64) != 1 || stats["active_loans"].(float64) != 0 || stats["total_loans_count"].(float64) != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	// 13. Settings upsert
	resp = performRequest(r, http.MethodPut, "/settings/library_name",
		jsonBody(t, map[string]string{"value": "Perpustakaan SMA 1"}), token)
	if resp.Code != 200 {
		t.Fatalf("update setting failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodGet, "/settings", nil, token)
	if got := decode(t, resp)["library_name"]; got != "Perpustakaan SMA 1" {
		t.Fatalf("setting not upserted, got %v", got)
	}

	// 14. Delete now succeeds and the book leaves the catalog
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/books/%d", bookID), nil, token)
	if resp.Code != 200 {
		t.Fatalf("delete failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/books", nil, token)
	var books []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &books); err != nil || len(books) != 0 {
		t.Fatalf("expected empty catalog after delete, body=%s", resp.Body.String())
	}
}

func TestFindBookGating(t *testing.T) {
	r := setupTestServer(t)
	token := loginAdmin(t, r)

	resp := performRequest(r, http.MethodPost, "/books", jsonBody(t, map[string]any{
		"title": "Laskar Pelangi", "author": "Andrea Hirata", "isbn": "9789793062792", "total_copy": 1,
	}), token)
	if resp.Code != 201 {
		t.Fatalf("create book failed: %s", resp.Body.String())
	}
	bookID := int(decode(t, resp)["id"].(float64))

	resp = performRequest(r, http.MethodGet, "/books/find?q=9789793062792", nil, token)
	if resp.Code != 200 {
		t.Fatalf("find by isbn failed status=%d", resp.Code)
	}

	resp = performRequest(r, http.MethodGet, "/books/find?q=unknown-isbn", nil, token)
	if resp.Code != 404 {
		t.Fatalf("expected 404 for unknown isbn, got %d", resp.Code)
	}

	// Borrow the only copy; the scanner lookup now reports empty stock.
	resp = performRequest(r, http.MethodPost, "/members", jsonBody(t, map[string]string{"name": "Budi"}), token)
	memberID := int(decode(t, resp)["id"].(float64))
	resp = performRequest(r, http.MethodPost, "/loans", jsonBody(t, map[string]any{
		"book_id": bookID, "member_id": memberID, "days": 7,
	}), token)
	if resp.Code != 201 {
		t.Fatalf("borrow failed: %s", resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/books/find?q=9789793062792", nil, token)
	if resp.Code != 409 {
		t.Fatalf("expected 409 for emptied stock, got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestInactiveMemberCannotBorrow(t *testing.T) {
	r := setupTestServer(t)
	token := loginAdmin(t, r)

	resp := performRequest(r, http.MethodPost, "/books", jsonBody(t, map[string]any{
		"title": "Negeri 5 Menara", "author": "Ahmad Fuadi", "total_copy": 2,
	}), token)
	bookID := int(decode(t, resp)["id"].(float64))
	resp = performRequest(r, http.MethodPost, "/members", jsonBody(t, map[string]string{"name": "Rina"}), token)
	memberID := int(decode(t, resp)["id"].(float64))

	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/members/%d", memberID), nil, token)
	if resp.Code != 200 {
		t.Fatalf("deactivate failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/loans", jsonBody(t, map[string]any{
		"book_id": bookID, "member_id": memberID, "days": 7,
	}), token)
	if resp.Code != 409 {
		t.Fatalf("expected 409 for inactive member, got %d body=%s", resp.Code, resp.Body.String())
	}

	// The member row survives deactivation.
	resp = performRequest(r, http.MethodGet, "/members", nil, token)
	var members []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &members); err != nil || len(members) != 1 {
		t.Fatalf("expected member to remain listed, body=%s", resp.Body.String())
	}
	if members[0]["status"] != "Nonaktif" {
		t.Fatalf("expected Nonaktif status, got %v", members[0]["status"])
	}
}

func TestChangePassword(t *testing.T) {
	r := setupTestServer(t)
	token := loginAdmin(t, r)

	resp := performRequest(r, http.MethodPut, "/me/password",
		jsonBody(t, map[string]string{"old_password": "wrong", "new_password": "rahasia1"}), token)
	if resp.Code != 409 {
		t.Fatalf("expected 409 for wrong old password, got %d", resp.Code)
	}
	if msg := decode(t, resp)["error"]; msg != "Kata sandi lama salah" {
		t.Fatalf("unexpected message: %v", msg)
	}

	resp = performRequest(r, http.MethodPut, "/me/password",
		jsonBody(t, map[string]string{"old_password": "admin123", "new_password": "rahasia1"}), token)
	if resp.Code != 200 {
		t.Fatalf("change password failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "rahasia1"}), "")
	if resp.Code != 200 {
		t.Fatalf("login with new password failed status=%d", resp.Code)
	}
}
