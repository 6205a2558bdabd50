package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/klokku/timeline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type memoryTokenStore struct {
	nonces map[int]string
	tokens map[int]*oauth2.Token
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{nonces: map[int]string{}, tokens: map[int]*oauth2.Token{}}
}

func (m *memoryTokenStore) StoreNonce(_ context.Context, userId int, nonce string) error {
	m.nonces[userId] = nonce
	delete(m.tokens, userId)
	return nil
}

func (m *memoryTokenStore) StoreToken(_ context.Context, nonce string, token *oauth2.Token) error {
	for userId, n := range m.nonces {
		if n == nonce {
			m.tokens[userId] = token
			return nil
		}
	}
	return assert.AnError
}

func (m *memoryTokenStore) GetToken(_ context.Context, userId int) (*oauth2.Token, error) {
	return m.tokens[userId], nil
}

func (m *memoryTokenStore) DeleteToken(_ context.Context, userId int) error {
	delete(m.nonces, userId)
	delete(m.tokens, userId)
	return nil
}

func testAppConfig() config.Application {
	cfg := config.Defaults()
	cfg.Google.ClientId = "client-id"
	cfg.Google.ClientSecret = "client-secret"
	return cfg
}

func TestGoogleAuth_OAuthLogin(t *testing.T) {
	// given
	store := newMemoryTokenStore()
	auth := NewGoogleAuth(store, testAppConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/login?finalUrl=http://localhost:3000/settings", nil)
	w := httptest.NewRecorder()

	// when
	auth.OAuthLogin(w, req.WithContext(userContext()))

	// then
	require.Equal(t, http.StatusOK, w.Code)
	var redirect googleAuthRedirect
	require.NoError(t, json.NewDecoder(w.Body).Decode(&redirect))
	redirectUrl, err := url.Parse(redirect.RedirectUrl)
	require.NoError(t, err)
	assert.Equal(t, "client-id", redirectUrl.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:3000/settings|"+store.nonces[1], redirectUrl.Query().Get("state"))
	assert.True(t, strings.HasSuffix(redirectUrl.Query().Get("redirect_uri"), "/api/integrations/google/auth/callback"))
}

func TestGoogleAuth_OAuthLogin_WithoutUser(t *testing.T) {
	auth := NewGoogleAuth(newMemoryTokenStore(), testAppConfig())
	w := httptest.NewRecorder()

	auth.OAuthLogin(w, httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/login", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGoogleAuth_OAuthCallback_InvalidState(t *testing.T) {
	auth := NewGoogleAuth(newMemoryTokenStore(), testAppConfig())
	w := httptest.NewRecorder()

	auth.OAuthCallback(w, httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/callback?code=abc&state=nonce-only", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoogleAuth_ClientAndLogout(t *testing.T) {
	store := newMemoryTokenStore()
	auth := NewGoogleAuth(store, testAppConfig())
	require.NoError(t, store.StoreNonce(context.Background(), 1, "n"))

	client, err := auth.Client(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, client)

	require.NoError(t, store.StoreToken(context.Background(), "n", &oauth2.Token{AccessToken: "token"}))
	client, err = auth.Client(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, client)

	w := httptest.NewRecorder()
	auth.OAuthLogout(w, httptest.NewRequest(http.MethodDelete, "/api/integrations/google/auth/logout", nil).WithContext(userContext()))
	assert.Equal(t, http.StatusNoContent, w.Code)
	client, err = auth.Client(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestWithSuccess(t *testing.T) {
	assert.Equal(t, "http://localhost/settings?success=true", withSuccess("http://localhost/settings", true))
	assert.Equal(t, "/settings?success=false&tab=google", withSuccess("/settings?tab=google", false))
}
