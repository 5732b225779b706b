// Package testutil holds helpers shared by handler and routing tests.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"

	"bookcatalog/internal/platform/crypto"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GenerateTestToken generates a JWT token for testing
func GenerateTestToken(secret, userID, username string) string {
	token, _, _ := crypto.GenerateToken(secret, userID, username, time.Hour)
	return token
}

// GenerateExpiredToken generates an expired JWT token for testing
func GenerateExpiredToken(secret, userID, username string) string {
	c := crypto.Claims{
		Sub:      userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing. A string body is sent
// as is, anything else is encoded as JSON.
func NewRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with JWT auth for testing
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// Data returns the data object of a success envelope.
func (r RecordResponse) Data() map[string]any {
	data, _ := r.Body["data"].(map[string]any)
	return data
}

// Meta returns the meta object of the envelope.
func (r RecordResponse) Meta() map[string]any {
	meta, _ := r.Body["meta"].(map[string]any)
	return meta
}

// ErrorCode returns error.code of a failure envelope.
func (r RecordResponse) ErrorCode() string {
	e, _ := r.Body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// AssertResponseCode checks if the response code matches expected
func AssertResponseCode(t interface {
	Errorf(format string, args ...any)
}, got, want int) {
	if got != want {
		t.Errorf("got status code %d, want %d", got, want)
	}
}

// AssertResponseBody checks if the response body contains expected field
func AssertResponseBody(t interface {
	Errorf(format string, args ...any)
}, body map[string]any, key string, expectedValue any) {
	value, ok := body[key]
	if !ok {
		t.Errorf("response body missing key %q", key)
		return
	}
	if value != expectedValue {
		t.Errorf("got %v for key %q, want %v", value, key, expectedValue)
	}
}
