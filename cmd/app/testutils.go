package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hazyrose/inkwell/internal/auth"
	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/store"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// newTestApplication wires the app against the in-memory backend so handler
// tests need no containers.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemStore()
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	cfg := &Config{
		Port:         ":0",
		Environment:  "development",
		Version:      "test",
		StoreBackend: "memory",
	}

	return &application{
		config:      cfg,
		logger:      logger,
		store:       st,
		cache:       cache,
		authService: auth.NewService(st, cache, nil, logger),
	}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	if len(responseBody) > 0 {
		err = json.Unmarshal(responseBody, &envelope)
		if err != nil {
			t.Fatal(err)
		}
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path string, payload any, cookie *http.Cookie) (int, http.Header, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, cookie *http.Cookie) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, nil, cookie)
}

func (ts *testServer) post(t *testing.T, path string, payload any, cookie *http.Cookie) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, payload, cookie)
}

func (ts *testServer) patch(t *testing.T, path string, payload any, cookie *http.Cookie) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPatch, path, payload, cookie)
}

func (ts *testServer) delete(t *testing.T, path string, cookie *http.Cookie) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, nil, cookie)
}

// register signs a user up through the API and returns their session cookie.
func (ts *testServer) register(t *testing.T, username, email string) *http.Cookie {
	t.Helper()

	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": "pa55word!",
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	res, err := ts.Client().Post(ts.URL+"/v1/auth/register", "application/json", bytes.NewReader(jsonPayload))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("registration failed with status %d", res.StatusCode)
	}

	for _, cookie := range res.Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}

	t.Fatal("no session cookie in registration response")
	return nil
}

// login opens an additional session for a user created with register.
func (ts *testServer) login(t *testing.T, username string) *http.Cookie {
	t.Helper()

	payload := map[string]string{
		"username": username,
		"password": "pa55word!",
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	res, err := ts.Client().Post(ts.URL+"/v1/auth/login", "application/json", bytes.NewReader(jsonPayload))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", res.StatusCode)
	}

	for _, cookie := range res.Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}

	t.Fatal("no session cookie in login response")
	return nil
}
