package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc, _, _ := newTestService()
	h := NewHandler(nil, svc, nil, zap.NewNop().Sugar())
	return h, svc
}

func TestRegisterEndpoint(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			"mahasiswa without nim",
			`{"firstName":"Budi","email":"budi@kampus.ac.id","password":"secret1","status":"mahasiswa"}`,
			http.StatusBadRequest,
		},
		{
			"valid staff",
			`{"firstName":"Sari","email":"sari@kampus.ac.id","password":"secret1","status":"staff"}`,
			http.StatusCreated,
		},
		{
			"malformed json",
			`{"firstName":`,
			http.StatusBadRequest,
		},
	}
	h, _ := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"firstName":"Sari","email":"sari@kampus.ac.id","password":"secret1","status":"staff"}`

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: want 409, got %d", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	if _, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Admin", Email: "admin@kampus.ac.id", Password: "secret1", Role: "admin",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown email", `{"email":"nobody@kampus.ac.id","password":"secret1"}`, http.StatusNotFound},
		{"wrong password", `{"email":"admin@kampus.ac.id","password":"nope"}`, http.StatusUnauthorized},
		{"success", `{"email":"admin@kampus.ac.id","password":"secret1"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Login(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if tt.want == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
					t.Fatalf("login response missing token: %s", rec.Body.String())
				}
			}
		})
	}
}
