package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulasa-client/internal/status"
	"pulasa-client/internal/tokenstore"
)

func testToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestSession(t *testing.T, handler http.HandlerFunc) (*Session, tokenstore.Store) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	store := tokenstore.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	return NewSession(NewClient(ts.URL, 5*time.Second), store), store
}

func TestSession_Login_PersistsTokenAndNotifies(t *testing.T) {
	session, store := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"token":   "jwt-login",
			"user":    map[string]any{"id": "u1", "email": "a@b.c"},
		})
	})
	watch := session.Watch()

	user, err := session.Login(context.Background(), "a@b.c", "pw")

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, session.IsAuthenticated())

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt-login", stored)

	select {
	case <-watch:
	default:
		t.Fatal("expected a session change signal")
	}
}

func TestSession_Login_ServerMessagePassedVerbatim(t *testing.T) {
	session, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "Invalid email or password",
		})
	})

	_, err := session.Login(context.Background(), "a@b.c", "wrong")

	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.False(t, session.IsAuthenticated())
}

func TestSession_Restore_DiscardsExpiredToken(t *testing.T) {
	session, store := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an expired token")
	})
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testToken(t, time.Now().Add(-time.Hour))))

	session.Restore(ctx)

	assert.False(t, session.IsAuthenticated())
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSession_Restore_AdoptsValidToken(t *testing.T) {
	token := testToken(t, time.Now().Add(time.Hour))
	session, store := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    map[string]any{"id": "u1"},
		})
	})
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, token))

	session.Restore(ctx)

	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, token, session.Token())
}

func TestSession_Restore_ClearsRejectedToken(t *testing.T) {
	session, store := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "token revoked"})
	})
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testToken(t, time.Now().Add(time.Hour))))

	session.Restore(ctx)

	assert.False(t, session.IsAuthenticated())
	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)
}

func TestSession_Logout_ClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	calls := 0
	session, store := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/api/auth/login" {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true, "token": "jwt", "user": map[string]any{"id": "u1"},
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()
	_, err := session.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	session.Logout(ctx)

	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.Token())
	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)
	assert.Equal(t, 2, calls)
}

func TestSession_TransferToken_RejectsInvalid(t *testing.T) {
	session, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "valid": false})
	})

	_, err := session.TransferToken(context.Background(), "foreign-token")

	assert.ErrorIs(t, err, status.ErrTokenInvalid)
	assert.False(t, session.IsAuthenticated())
}

func TestSession_TransferToken_AdoptsValid(t *testing.T) {
	session, store := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/validate":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "valid": true})
		case "/api/auth/profile":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"user":    map[string]any{"id": "u2", "is_admin": true},
			})
		}
	})
	ctx := context.Background()

	user, err := session.TransferToken(ctx, "foreign-token")

	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.True(t, session.IsAdmin())

	stored, _ := store.Load(ctx)
	assert.Equal(t, "foreign-token", stored)
}
