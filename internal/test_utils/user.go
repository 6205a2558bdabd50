package test_utils

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/timeline/pkg/user"
	"github.com/stretchr/testify/require"
)

// TestUser is the user most tests act as.
var TestUser = user.User{
	Id:          1,
	Uid:         "0b4ad7cc-3f1f-4d2e-9c69-0f6a0c3a1d11",
	Username:    "test_user",
	DisplayName: "Test User",
	Settings: user.Settings{
		Timezone: "Europe/Warsaw",
	},
}

// ContextWithUser returns a context carrying TestUser.
func ContextWithUser() context.Context {
	return user.WithUser(context.Background(), TestUser)
}

// InsertUser stores u in the database and returns it with the assigned id.
func InsertUser(t *testing.T, db *pgxpool.Pool, u user.User) user.User {
	t.Helper()
	id, err := user.NewUserRepo(db).CreateUser(context.Background(), u)
	require.NoError(t, err)
	u.Id = id
	return u
}
