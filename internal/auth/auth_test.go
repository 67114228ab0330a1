package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/artpromedia/aivo-qti/internal/auth"
)

func TestIssueAndParse(t *testing.T) {
	a := auth.NewAuthService("test-secret")
	tok, err := a.IssueJWT("alice", "author")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	claims, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Sub != "alice" || claims.Role != "author" {
		t.Errorf("claims = %+v", claims)
	}

	// a token signed with another secret must not verify
	other := auth.NewAuthService("other-secret")
	if _, err := other.Parse(tok); err == nil {
		t.Error("Parse accepted a token signed with a different secret")
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	a := auth.NewAuthService("test-secret")
	h := auth.LoginHandler(a, "admin", string(hash))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"username":"admin","password":"s3cret"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"wrong user", `{"username":"root","password":"s3cret"}`, http.StatusUnauthorized},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				var resp map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if _, err := a.Parse(resp["access_token"]); err != nil {
					t.Errorf("issued token does not parse: %v", err)
				}
			}
		})
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := auth.NewAuthService("test-secret")
	tok, err := a.IssueJWT("svc", "service")
	if err != nil {
		t.Fatal(err)
	}

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := auth.JWTMiddleware(a)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !called || rec.Code != http.StatusOK {
		t.Errorf("valid token: called=%v status=%d", called, rec.Code)
	}

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if called || rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: called=%v status=%d, want 401", header, called, rec.Code)
		}
	}
}
