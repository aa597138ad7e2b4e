package avito

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMissingCredentials(t *testing.T) {
	src := NewClientCredentials(nil, "", "", "http://unused.invalid/token", nil)
	_, err := src.Token(context.Background())
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestTokenExchangeSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "my-id", r.Form.Get("client_id"))
		assert.Equal(t, "my-secret", r.Form.Get("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc123","token_type":"Bearer","expires_in":86400}`))
	}))
	defer ts.Close()

	src := NewClientCredentials(nil, "my-id", "my-secret", ts.URL, nil)
	token, err := src.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestTokenExchangeRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	src := NewClientCredentials(nil, "my-id", "wrong", ts.URL, nil)
	_, err := src.Token(context.Background())
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestAccountResolverCachesFirstSuccess(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/core/v1/accounts/self", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":31337,"name":"seller"}`))
	}))
	defer ts.Close()

	resolver := NewAccountResolver(nil, staticTokens{token: "test-token"}, nil, ts.URL, 0)

	id, err := resolver.AccountID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(31337), id)

	id, err = resolver.AccountID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(31337), id)
	assert.Equal(t, 1, calls, "second lookup should come from the cache")
}

func TestAccountResolverFailuresNotCached(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer ts.Close()

	resolver := NewAccountResolver(nil, staticTokens{token: "test-token"}, nil, ts.URL, 0)

	_, err := resolver.AccountID(context.Background())
	require.Error(t, err)

	id, err := resolver.AccountID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, 2, calls)
}

func TestAccountResolverOverride(t *testing.T) {
	resolver := NewAccountResolver(nil, staticTokens{err: ErrCredentials}, nil, "http://unused.invalid", 42)
	id, err := resolver.AccountID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
