package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// TokenStore keeps the OAuth state of each user. A login first stores a nonce;
// the callback attaches the token to the row holding that nonce.
type TokenStore interface {
	StoreNonce(ctx context.Context, userId int, nonce string) error
	StoreToken(ctx context.Context, nonce string, token *oauth2.Token) error
	// GetToken returns nil when the user has not completed a login.
	GetToken(ctx context.Context, userId int) (*oauth2.Token, error)
	DeleteToken(ctx context.Context, userId int) error
}

type AuthRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewAuthRepository(db *pgxpool.Pool) *AuthRepositoryImpl {
	return &AuthRepositoryImpl{db: db}
}

func (r *AuthRepositoryImpl) StoreNonce(ctx context.Context, userId int, nonce string) error {
	query := `INSERT INTO google_calendar_auth (user_id, nonce) VALUES ($1, $2)
			  ON CONFLICT (user_id) DO UPDATE
			  SET nonce = EXCLUDED.nonce, access_token = NULL, refresh_token = NULL, expiry = NULL`
	if _, err := r.db.Exec(ctx, query, userId, nonce); err != nil {
		log.Errorf("failed to store Google auth nonce for user %d: %v", userId, err)
		return err
	}
	return nil
}

func (r *AuthRepositoryImpl) StoreToken(ctx context.Context, nonce string, token *oauth2.Token) error {
	query := `UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4`
	tag, err := r.db.Exec(ctx, query, token.AccessToken, token.RefreshToken, token.Expiry, nonce)
	if err != nil {
		log.Errorf("unable to store Google auth token for nonce: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unknown Google auth nonce")
	}
	return nil
}

func (r *AuthRepositoryImpl) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	var accessToken, refreshToken *string
	var expiry *time.Time
	err := r.db.QueryRow(ctx, "SELECT access_token, refresh_token, expiry FROM google_calendar_auth WHERE user_id = $1", userId).
		Scan(&accessToken, &refreshToken, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if accessToken == nil {
		return nil, nil
	}

	token := &oauth2.Token{AccessToken: *accessToken}
	if refreshToken != nil {
		token.RefreshToken = *refreshToken
	}
	if expiry != nil {
		token.Expiry = *expiry
	}
	return token, nil
}

func (r *AuthRepositoryImpl) DeleteToken(ctx context.Context, userId int) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM google_calendar_auth WHERE user_id = $1", userId); err != nil {
		log.Errorf("failed to delete Google auth row for user %d: %v", userId, err)
		return err
	}
	return nil
}
