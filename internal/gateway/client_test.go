package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finman/internal/core"
)

func TestLoginInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if creds.Email != "ada@example.com" {
			t.Fatalf("email %q", creds.Email)
		}
		json.NewEncoder(w).Encode(loginResponse{
			Token: "tok-123",
			User:  core.User{ID: 1, Name: "Ada", Email: creds.Email},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	user, token, err := c.Login(context.Background(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != 1 || token != "tok-123" || c.token != "tok-123" {
		t.Fatalf("login result %+v token %q", user, token)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Fatalf("authorization header %q", got)
		}
		json.NewEncoder(w).Encode([]core.Expense{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok-123")
	if _, err := c.List(context.Background(), 1); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestCreateRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e core.Expense
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if e.ID != 0 {
			t.Fatalf("client sent an id on create: %d", e.ID)
		}
		e.ID = 42
		e.Version = 1
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(e)
	}))
	defer srv.Close()

	c := New(srv.URL)
	created, err := c.Create(context.Background(), core.Expense{
		UserID:   1,
		Amount:   core.Money{Cents: 1234},
		Category: "Food",
		Date:     core.NewDate(2024, 1, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 42 || created.Version != 1 || created.Amount.Cents != 1234 {
		t.Fatalf("created %+v", created)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(errorResponse{Error: "nope"})
		}))
		c := New(srv.URL)
		err := c.Delete(context.Background(), 7)
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d classified as %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	_, err := c.List(context.Background(), 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestMalformedResponseIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.List(context.Background(), 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestServerErrorIsNotMisclassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Delete(context.Background(), 7)
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrUnavailable) {
		t.Fatalf("500 classified as %v", err)
	}
}
