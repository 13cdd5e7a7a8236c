package testhelpers

import (
	"context"
	"testing"
	"time"

	kdb "github.com/opst/contactbook/pkg/db"
	kpool "github.com/opst/contactbook/pkg/db/postgres/pool"
)

// get current timestamp in postgres.
func PGNow(ctx context.Context, conn kpool.Queryer) (time.Time, error) {
	var now time.Time
	err := conn.QueryRow(ctx, `select now()`).Scan(&now)
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// InsertUser inserts a user record directly, for test fixtures.
func InsertUser(ctx context.Context, t *testing.T, conn kpool.Queryer, username string) kdb.User {
	t.Helper()

	user := kdb.User{Username: username, PasswordHash: "hash-of-" + username}
	if err := conn.QueryRow(
		ctx,
		`insert into "user" ("username", "password_hash") values ($1, $2) returning "user_id"`,
		user.Username, user.PasswordHash,
	).Scan(&user.Id); err != nil {
		t.Fatalf("fail to insert user %s: %v", username, err)
	}
	return user
}

// InsertProfile inserts a profile record directly, for test fixtures.
func InsertProfile(ctx context.Context, t *testing.T, conn kpool.Queryer, userId int64, body kdb.ProfileBody) kdb.Profile {
	t.Helper()

	p := kdb.Profile{UserId: userId, ProfileBody: body}
	if err := conn.QueryRow(
		ctx,
		`
		insert into "profile" ("user_id", "full_name", "email", "phone", "comment")
		values ($1, $2, $3, $4, $5)
		returning "profile_id"
		`,
		userId, body.FullName, body.Email, body.Phone, body.Comment,
	).Scan(&p.Id); err != nil {
		t.Fatalf("fail to insert profile for user %d: %v", userId, err)
	}
	return p
}
