package google

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/klokku/timeline/internal/config"
	"github.com/klokku/timeline/internal/rest"
	"github.com/klokku/timeline/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type GoogleAuth struct {
	store       TokenStore
	oauthConfig *oauth2.Config
}

func NewGoogleAuth(store TokenStore, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}

	return &GoogleAuth{store: store, oauthConfig: oauthConfig}
}

// OAuthLogin starts a new login for the current user and returns the Google
// consent URL. Any previous token of the user is dropped.
func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	stateNonce := uuid.New().String()
	finalUrl := r.URL.Query().Get("finalUrl")

	if err := g.store.StoreNonce(r.Context(), userId, stateNonce); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	writeJSON(w, http.StatusOK, googleAuthRedirect{RedirectUrl: u})
}

// OAuthCallback exchanges the authorization code and stores the token for the
// user that started the login, then redirects back to the final url.
func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	finalUrl, nonce, ok := strings.Cut(r.FormValue("state"), "|")
	if !ok || nonce == "" {
		rest.WriteError(w, http.StatusBadRequest, "Invalid OAuth state", "")
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, withSuccess(finalUrl, false), http.StatusFound)
		return
	}

	if err := g.store.StoreToken(r.Context(), nonce, token); err != nil {
		http.Redirect(w, r, withSuccess(finalUrl, false), http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, withSuccess(finalUrl, true), http.StatusFound)
}

func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := g.store.DeleteToken(r.Context(), userId); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Client returns an HTTP client authorized as userId, or nil when the user
// never logged in.
func (g *GoogleAuth) Client(ctx context.Context, userId int) (*http.Client, error) {
	token, err := g.store.GetToken(ctx, userId)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return g.oauthConfig.Client(context.Background(), token), nil
}

func withSuccess(finalUrl string, success bool) string {
	u, err := url.Parse(finalUrl)
	if err != nil {
		return "/"
	}
	q := u.Query()
	if success {
		q.Set("success", "true")
	} else {
		q.Set("success", "false")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
