package sqlite

import (
	"context"
	"database/sql"
	"errors"

	kdb "github.com/opst/contactbook/pkg/db"
	kerr "github.com/opst/contactbook/pkg/db/errors"
	xe "github.com/opst/contactbook/pkg/errors"
)

type users struct {
	db *sql.DB
}

var _ kdb.UserInterface = &users{}

func (u *users) Register(ctx context.Context, username string, passwordHash string) (kdb.User, error) {
	res, err := u.db.ExecContext(
		ctx,
		`INSERT INTO "user" (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return kdb.User{}, kerr.Conflict{Table: "user", Identity: identity("username", username), Cause: err}
		}
		return kdb.User{}, xe.Wrap(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return kdb.User{}, xe.Wrap(err)
	}
	return kdb.User{Id: id, Username: username, PasswordHash: passwordHash}, nil
}

func (u *users) Get(ctx context.Context, id int64) (kdb.User, error) {
	return u.getOne(
		ctx, identity("user_id", id),
		`SELECT user_id, username, password_hash FROM "user" WHERE user_id = ?`, id,
	)
}

func (u *users) GetByName(ctx context.Context, username string) (kdb.User, error) {
	return u.getOne(
		ctx, identity("username", username),
		`SELECT user_id, username, password_hash FROM "user" WHERE username = ?`, username,
	)
}

func (u *users) getOne(ctx context.Context, ident string, query string, arg any) (kdb.User, error) {
	user := kdb.User{}
	if err := u.db.QueryRowContext(ctx, query, arg).Scan(
		&user.Id, &user.Username, &user.PasswordHash,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kdb.User{}, kerr.Missing{Table: "user", Identity: ident}
		}
		return kdb.User{}, xe.Wrap(err)
	}
	return user, nil
}
