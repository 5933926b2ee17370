// Package integration provides integration tests for the bookmart API.
//
// Tests run against a real bookmart HTTP server assembled exactly like
// production (real token codec, real bcrypt hashing, full middleware
// stack), started in-process using net/http/httptest.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/auth"
	"github.com/bookmart-dev/bookmart/pkg/auth/password"
	"github.com/bookmart-dev/bookmart/pkg/auth/token"
	"github.com/bookmart-dev/bookmart/pkg/config"
	"github.com/bookmart-dev/bookmart/pkg/service"
	"github.com/bookmart-dev/bookmart/pkg/storage/memory"
	transporthttp "github.com/bookmart-dev/bookmart/pkg/transport/http"
)

// testEnv holds the shared server for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the bookmart server and its backing store.
type TestEnvironment struct {
	Server *httptest.Server
	Store  *memory.Store
}

// TestMain starts the bookmart server before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Server.Close()
	os.Exit(code)
}

// setupTestEnvironment assembles a server the way cmd/server does.
func setupTestEnvironment() *TestEnvironment {
	store := memory.New()
	hasher := password.New(4) // minimum bcrypt cost keeps tests fast

	codec, err := token.New(token.Config{Secret: []byte("integration-test-secret")})
	if err != nil {
		panic(fmt.Sprintf("creating token codec: %v", err))
	}
	login, err := auth.NewCredentialAuthenticator(store, hasher)
	if err != nil {
		panic(fmt.Sprintf("creating credential authenticator: %v", err))
	}
	guard := auth.NewGuard(auth.NewRequestAuthenticator(codec, store))

	customers := service.NewCustomerService(store, store, hasher)
	books := service.NewBookService(store, store)
	purchases := service.NewPurchaseService(store, store, store, nil)

	a := transporthttp.NewAPI(customers, books, purchases, login, codec, time.Hour, store)
	handler := transporthttp.NewHandler(a, guard, config.Defaults().Observability,
		slog.New(slog.DiscardHandler))

	return &TestEnvironment{
		Server: httptest.NewServer(handler),
		Store:  store,
	}
}

// BaseURL returns the bookmart server base URL.
func (env *TestEnvironment) BaseURL() string {
	return env.Server.URL
}

// --- HTTP helpers ---

// request sends a JSON request with an optional bearer token.
func request(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, testEnv.BaseURL()+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// decode reads the response body into v.
func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

// errorCode extracts the structured error code from an error response.
func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var er api.ErrorResponse
	decode(t, resp, &er)
	if er.Error == nil {
		t.Fatal("response has no error field")
	}
	return er.Error.Code
}

// uniqueEmail generates an email unique to the test, since all tests
// share one store.
func uniqueEmail(t *testing.T) string {
	return fmt.Sprintf("%s-%d@example.com", t.Name(), time.Now().UnixNano())
}

// register creates a customer account and returns it with its password.
func register(t *testing.T, name string) (*api.Customer, string, string) {
	t.Helper()
	email := uniqueEmail(t)
	resp := request(t, http.MethodPost, "/customers", "", api.CreateCustomerRequest{
		Name:     name,
		Email:    email,
		Password: "s3cret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("registering: status %d", resp.StatusCode)
	}
	var c api.Customer
	decode(t, resp, &c)
	return &c, email, "s3cret"
}

// login exchanges credentials for a token.
func login(t *testing.T, email, pass string) string {
	t.Helper()
	resp := request(t, http.MethodPost, "/login", "", api.LoginRequest{Email: email, Password: pass})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	var lr api.LoginResponse
	decode(t, resp, &lr)
	return lr.Token
}

// makeAdmin grants the admin role directly in the store.
func makeAdmin(t *testing.T, id int64) {
	t.Helper()
	c, err := testEnv.Store.GetCustomer(t.Context(), id)
	if err != nil {
		t.Fatalf("getting customer: %v", err)
	}
	c.Roles = append(c.Roles, string(auth.RoleAdmin))
	if err := testEnv.Store.UpdateCustomer(t.Context(), c); err != nil {
		t.Fatalf("updating customer: %v", err)
	}
}
