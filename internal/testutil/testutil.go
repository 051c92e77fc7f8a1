package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"littlelibrary/internal/platform/identity"

	"github.com/golang-jwt/jwt/v5"
)

// TestSecret signs every token built by this package.
const TestSecret = "test-secret"

// TestUser is the default authenticated caller in handler tests.
var TestUser = identity.Identity{
	UID:           "test-user-id-123",
	Email:         "test@example.com",
	Name:          "Test User",
	EmailVerified: true,
}

// OtherUser owns nothing the TestUser owns.
var OtherUser = identity.Identity{
	UID:   "test-user-id-456",
	Email: "other@example.com",
}

// GenerateTestToken generates an ID token for id signed with TestSecret.
func GenerateTestToken(id identity.Identity) string {
	token, _ := identity.GenerateToken(TestSecret, id, time.Hour)
	return token
}

// GenerateExpiredToken generates an ID token for id that expired an hour ago.
func GenerateExpiredToken(id identity.Identity) string {
	c := identity.Claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(TestSecret))
	return token
}

// NewVerifier returns a verifier that accepts tokens from GenerateTestToken.
func NewVerifier() identity.Verifier {
	v, err := identity.NewJWTVerifier(identity.Config{Secret: TestSecret})
	if err != nil {
		panic(err)
	}
	return v
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
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

// NewRequestWithAuth creates a new HTTP request with a bearer token for testing
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
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
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
