package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcitech/arcdash/internal/config"
	"github.com/arcitech/arcdash/internal/tokenstore"
	"github.com/arcitech/arcdash/pkg/client"
)

func signToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "7",
		"email": "dev@arcitech.io",
		"role":  role,
		"exp":   exp.Unix(),
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// setup points the CLI at a fake API and a fresh state dir, and returns the
// store the CLI will use.
func setup(t *testing.T, api http.Handler) *tokenstore.FileStore {
	t.Helper()
	if api == nil {
		api = chi.NewRouter()
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvAPIBaseURL, srv.URL)
	t.Setenv(config.EnvWebBaseURL, "http://web.test")
	t.Setenv(config.EnvDebug, "")
	t.Setenv(config.EnvEnvironment, "test")

	prev := isInteractive
	isInteractive = func() bool { return false }
	t.Cleanup(func() { isInteractive = prev })

	return tokenstore.NewFileStore(home)
}

func signIn(t *testing.T, store *tokenstore.FileStore, role string, exp time.Time) string {
	t.Helper()
	tok := signToken(t, role, exp)
	require.NoError(t, store.Set(tok))
	require.NoError(t, store.SetRole(role))
	return tok
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "arcdash dev\n", out)
}

func TestLogin(t *testing.T) {
	tok := signToken(t, "DEVELOPER", time.Now().Add(time.Hour))
	r := chi.NewRouter()
	r.Post(client.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dev@arcitech.io", body["email"])
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"token": tok, "role": "DEVELOPER", "fullName": "Dev"})
	})
	store := setup(t, r)

	out, err := execute(t, "login", "--email", "dev@arcitech.io", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in.")
	assert.Contains(t, out, "[DEVELOPER]")
	assert.Contains(t, out, "/dashboard/developer")

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, tok, got)
	role, ok := store.GetRole()
	require.True(t, ok)
	assert.Equal(t, "DEVELOPER", role)
}

func TestLoginCustomerLandsOnUserDashboard(t *testing.T) {
	tok := signToken(t, "CUSTOMER", time.Now().Add(time.Hour))
	r := chi.NewRouter()
	r.Post(client.LoginPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": tok, "role": "CUSTOMER"})
	})
	setup(t, r)

	out, err := execute(t, "login", "--email", "c@arcitech.io", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "[USER]")
	assert.Contains(t, out, "/dashboard/user")
}

func TestLoginRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Post(client.LoginPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
	})
	store := setup(t, r)

	_, err := execute(t, "login", "--email", "dev@arcitech.io", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Bad credentials", err.Error())
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestLoginInvalidResponse(t *testing.T) {
	r := chi.NewRouter()
	r.Post(client.LoginPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	setup(t, r)

	_, err := execute(t, "login", "--email", "dev@arcitech.io", "--password", "pw")
	require.Error(t, err)
	assert.Equal(t, "Invalid response from server", err.Error())
}

func TestLoginServerDown(t *testing.T) {
	setup(t, nil)
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	t.Setenv(config.EnvAPIBaseURL, down.URL)

	_, err := execute(t, "login", "--email", "dev@arcitech.io", "--password", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No response from server")
}

func TestLoginNeedsTerminalForPrompts(t *testing.T) {
	setup(t, nil)
	_, err := execute(t, "login", "--email", "dev@arcitech.io")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNotInteractive))
}

func TestRegister(t *testing.T) {
	r := chi.NewRouter()
	r.Post(client.RegisterPath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada Lovelace", body["fullName"])
		assert.Equal(t, "BOOTCAMP", body["programType"])
		writeJSON(w, http.StatusCreated, map[string]any{"id": 3, "email": body["email"], "message": "Registration successful"})
	})
	store := setup(t, r)

	out, err := execute(t, "register", "--name", "Ada Lovelace", "--email", "ada@arcitech.io", "--password", "pw", "--program", "BOOTCAMP")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created.")
	assert.Contains(t, out, "Registration successful")
	assert.Contains(t, out, "arcdash login --email ada@arcitech.io")

	_, ok := store.Get()
	assert.False(t, ok, "registering must not sign in")
}

func TestRegisterRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Post(client.RegisterPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
	})
	setup(t, r)

	_, err := execute(t, "register", "--name", "Ada", "--email", "ada@arcitech.io", "--password", "pw")
	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())
}

func TestLogout(t *testing.T) {
	store := setup(t, nil)
	signIn(t, store, "DEVELOPER", time.Now().Add(time.Hour))

	out, err := execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")
	_, ok := store.Get()
	assert.False(t, ok)
	_, ok = store.GetRole()
	assert.False(t, ok)

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Already logged out.")
}

func TestStatus(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		setup(t, nil)
		out, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Not signed in.")
	})

	t.Run("expired token is cleared", func(t *testing.T) {
		store := setup(t, nil)
		signIn(t, store, "DEVELOPER", time.Now().Add(-time.Minute))

		out, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Your session has expired")
		_, ok := store.Get()
		assert.False(t, ok)
	})

	t.Run("offline", func(t *testing.T) {
		store := setup(t, nil)
		signIn(t, store, "SUB_ADMIN", time.Now().Add(2*time.Hour))

		out, err := execute(t, "status", "--offline")
		require.NoError(t, err)
		assert.Contains(t, out, "[SUB_ADMIN]")
		assert.Contains(t, out, "/dashboard/sub-admin")
		assert.Contains(t, out, "in 2h")
		assert.NotContains(t, out, "Verified")
	})

	t.Run("verified against the API", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get(client.ProfilePath, func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
			writeJSON(w, http.StatusOK, map[string]any{"id": 7, "fullName": "Grace Hopper", "email": "dev@arcitech.io", "role": "DEVELOPER"})
		})
		store := setup(t, r)
		signIn(t, store, "DEVELOPER", time.Now().Add(time.Hour))

		out, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Grace Hopper")
		assert.Contains(t, out, "Verified")
	})

	t.Run("server rejects the token", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get(client.ProfilePath, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token revoked"})
		})
		store := setup(t, r)
		signIn(t, store, "DEVELOPER", time.Now().Add(time.Hour))

		out, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Your session has expired. Please sign in again.")
		assert.NotContains(t, out, "Token revoked")
		assert.Contains(t, out, "To sign in: arcdash login")
		_, ok := store.Get()
		assert.False(t, ok, "401 must clear the session")
	})

	t.Run("forbidden keeps the session", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get(client.ProfilePath, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "nope"})
		})
		store := setup(t, r)
		signIn(t, store, "DEVELOPER", time.Now().Add(time.Hour))

		out, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "You don't have permission")
		assert.NotContains(t, out, "To sign in")
		_, ok := store.Get()
		assert.True(t, ok)
	})
}

func TestOpenPrint(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		exp   time.Duration
		route string
		want  string
	}{
		{"signed out", "", 0, "", "http://web.test/auth/login"},
		{"expired", "DEVELOPER", -time.Minute, "", "http://web.test/auth/login?session=expired"},
		{"landing", "DEVELOPER", time.Hour, "", "http://web.test/dashboard/developer"},
		{"bare dashboard resolves", "SUPER_ADMIN", time.Hour, "/dashboard", "http://web.test/dashboard/super-admin"},
		{"allowed route", "SUPER_ADMIN", time.Hour, "dashboard/super-admin/users", "http://web.test/dashboard/super-admin/users"},
		{"guarded route", "DEVELOPER", time.Hour, "/dashboard/super-admin", "http://web.test/unauthorized"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := setup(t, nil)
			if tc.role != "" {
				signIn(t, store, tc.role, time.Now().Add(tc.exp))
			}
			args := []string{"open", "--print"}
			if tc.route != "" {
				args = append(args, tc.route)
			}
			out, err := execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want+"\n", out)
		})
	}
}

func TestOpenBrowser(t *testing.T) {
	store := setup(t, nil)
	signIn(t, store, "DEVELOPER", time.Now().Add(time.Hour))

	var opened string
	prev := openURL
	t.Cleanup(func() { openURL = prev })

	openURL = func(u string) error { opened = u; return nil }
	out, err := execute(t, "open")
	require.NoError(t, err)
	assert.Equal(t, "http://web.test/dashboard/developer", opened)
	assert.Contains(t, out, "Opened")

	openURL = func(string) error { return errors.New("no display") }
	out, err = execute(t, "open")
	require.NoError(t, err)
	assert.Contains(t, out, "Visit this URL manually")
}

func TestRoutes(t *testing.T) {
	store := setup(t, nil)
	signIn(t, store, "DEVELOPER", time.Now().Add(time.Hour))

	out, err := execute(t, "routes")
	require.NoError(t, err)
	for _, p := range []string{"/dashboard/super-admin", "/dashboard/sub-admin", "/dashboard/developer", "/dashboard/user"} {
		assert.Contains(t, out, p)
	}
	lines := strings.Split(out, "\n")
	for _, l := range lines {
		if strings.Contains(l, "/dashboard/developer") {
			assert.Contains(t, l, "*")
		}
		if strings.Contains(l, "/dashboard/user ") {
			assert.NotContains(t, l, "*")
		}
	}
}

func TestFormatExpiry(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	soon := now.Add(20 * time.Second)
	later := now.Add(90 * time.Minute)

	assert.Equal(t, "no expiry", formatExpiry(nil, now))
	assert.True(t, strings.HasPrefix(formatExpiry(&past, now), "expired "))
	assert.Contains(t, formatExpiry(&now, now), "expired")
	assert.Contains(t, formatExpiry(&soon, now), "in under a minute")
	assert.Contains(t, formatExpiry(&later, now), "in 1h30m")
}
