package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gemchat/internal/app/account"
	"gemchat/internal/app/session"
	"gemchat/internal/configs"
	"gemchat/internal/pkg/pow"
	"gemchat/internal/pkg/resp"
)

func newTestDeps(t *testing.T) *AppDeps {
	t.Helper()

	sessions := session.NewMemoryStore(5 * time.Minute)
	t.Cleanup(func() { _ = sessions.Close() })

	return &AppDeps{
		Config: &configs.AppConfig{
			Environment:   "development",
			PowDifficulty: 0,
			SessionTTL:    5 * time.Minute,
		},
		Sessions: sessions,
		Accounts: account.NewMemoryStore(),
		Pow:      pow.NewManager(0),
	}
}

// proofToken solves a zero-difficulty challenge and returns the token.
func proofToken(t *testing.T, deps *AppDeps) string {
	t.Helper()

	nonce := deps.Pow.GenerateNonce()
	token, err := deps.Pow.ValidateProof(nonce, "0")
	if err != nil {
		t.Fatalf("failed to solve proof-of-work challenge: %v", err)
	}
	return token
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	r := httptest.NewRequest(method, target, strings.NewReader(string(data)))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) resp.JSONResponse {
	t.Helper()

	var response resp.JSONResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return response
}

func register(t *testing.T, deps *AppDeps, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	r := jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"avatar":   "1",
		"name":     "Tester",
		"password": password,
	})
	r.Header.Set(pow.TokenHeaderKey, proofToken(t, deps))

	rec := httptest.NewRecorder()
	HandleRegister(deps)(rec, r)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	t.Fatal("expected a session cookie in the response")
	return nil
}

func TestRegisterCreatesAccountAndSession(t *testing.T) {
	deps := newTestDeps(t)

	rec := register(t, deps, "alice", "secret123")

	response := decodeResponse(t, rec)
	if response.Code != 0 {
		t.Fatalf("expected success, got code %d: %s", response.Code, response.Message)
	}

	cookie := sessionCookie(t, rec)
	if cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("expected a non-empty HttpOnly session cookie, got %+v", cookie)
	}

	acc, err := deps.Accounts.GetByUsername(t.Context(), "alice")
	if err != nil {
		t.Fatalf("expected persisted account: %v", err)
	}
	if acc.PasswordHash == "secret123" {
		t.Fatal("password must not be stored in plaintext")
	}
}

func TestRegisterRequiresProofToken(t *testing.T) {
	deps := newTestDeps(t)

	r := jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"avatar":   "1",
		"name":     "Alice",
		"password": "secret123",
	})

	rec := httptest.NewRecorder()
	HandleRegister(deps)(rec, r)

	response := decodeResponse(t, rec)
	if response.Code != 3001 {
		t.Fatalf("expected code 3001, got %d", response.Code)
	}
}

func TestRegisterRejectsInvalidUsername(t *testing.T) {
	deps := newTestDeps(t)

	rec := register(t, deps, "bad name!", "secret123")

	response := decodeResponse(t, rec)
	if response.Code != 3101 {
		t.Fatalf("expected code 3101, got %d", response.Code)
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	deps := newTestDeps(t)

	r := jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	r.Header.Set(pow.TokenHeaderKey, proofToken(t, deps))

	rec := httptest.NewRecorder()
	HandleRegister(deps)(rec, r)

	response := decodeResponse(t, rec)
	if response.Code != 3102 {
		t.Fatalf("expected code 3102, got %d", response.Code)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	deps := newTestDeps(t)

	register(t, deps, "alice", "secret123")
	rec := register(t, deps, "alice", "another456")

	response := decodeResponse(t, rec)
	if response.Code != 3103 {
		t.Fatalf("expected code 3103, got %d", response.Code)
	}
}

func TestSigninRejectsWrongPassword(t *testing.T) {
	deps := newTestDeps(t)

	register(t, deps, "alice", "secret123")

	r := jsonRequest(t, http.MethodPost, "/api/auth/signin", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	rec := httptest.NewRecorder()
	HandleSignin(deps)(rec, r)

	response := decodeResponse(t, rec)
	if response.Code != 3104 {
		t.Fatalf("expected code 3104, got %d", response.Code)
	}
}

func TestSigninAndValidateRoundTrip(t *testing.T) {
	deps := newTestDeps(t)

	register(t, deps, "alice", "secret123")

	r := jsonRequest(t, http.MethodPost, "/api/auth/signin", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	rec := httptest.NewRecorder()
	HandleSignin(deps)(rec, r)

	if response := decodeResponse(t, rec); response.Code != 0 {
		t.Fatalf("expected signin success, got code %d", response.Code)
	}
	cookie := sessionCookie(t, rec)

	validateReq := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	validateReq.AddCookie(cookie)
	validateRec := httptest.NewRecorder()
	HandleValidate(deps)(validateRec, validateReq)

	response := decodeResponse(t, validateRec)
	if response.Code != 0 {
		t.Fatalf("expected validate success, got code %d", response.Code)
	}

	data, ok := response.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", response.Data)
	}
	userData, ok := data["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object, got %T", data["user"])
	}
	if userData["username"] != "alice" {
		t.Fatalf("expected alice, got %v", userData["username"])
	}
}

func TestValidateWithoutSession(t *testing.T) {
	deps := newTestDeps(t)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	rec := httptest.NewRecorder()
	HandleValidate(deps)(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected HTTP 401, got %d", rec.Code)
	}

	response := decodeResponse(t, rec)
	if response.Code != 3105 {
		t.Fatalf("expected code 3105, got %d", response.Code)
	}
}

func TestSignoutInvalidatesSession(t *testing.T) {
	deps := newTestDeps(t)

	rec := register(t, deps, "alice", "secret123")
	cookie := sessionCookie(t, rec)

	signoutReq := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	signoutReq.AddCookie(cookie)
	signoutRec := httptest.NewRecorder()
	HandleSignout(deps)(signoutRec, signoutReq)

	if response := decodeResponse(t, signoutRec); response.Code != 0 {
		t.Fatalf("expected signout success, got code %d", response.Code)
	}

	validateReq := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	validateReq.AddCookie(cookie)
	validateRec := httptest.NewRecorder()
	HandleValidate(deps)(validateRec, validateReq)

	if response := decodeResponse(t, validateRec); response.Code != 3105 {
		t.Fatalf("expected code 3105 after signout, got %d", response.Code)
	}
}
