package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	kdb "github.com/opst/contactbook/pkg/db"
	kerr "github.com/opst/contactbook/pkg/db/errors"
	kpgerr "github.com/opst/contactbook/pkg/db/postgres/errors"
	kpool "github.com/opst/contactbook/pkg/db/postgres/pool"
	xe "github.com/opst/contactbook/pkg/errors"
)

type pgUser struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.UserInterface {
	return &pgUser{pool: pool}
}

func (u *pgUser) Register(ctx context.Context, username string, passwordHash string) (kdb.User, error) {
	conn, err := u.pool.Acquire(ctx)
	if err != nil {
		return kdb.User{}, xe.Wrap(err)
	}
	defer conn.Release()

	user := kdb.User{Username: username, PasswordHash: passwordHash}
	if err := conn.QueryRow(
		ctx,
		`
		insert into "user" ("username", "password_hash") values ($1, $2)
		returning "user_id"
		`,
		username, passwordHash,
	).Scan(&user.Id); err != nil {
		if kpgerr.IsUniqueViolation(err) {
			return kdb.User{}, kerr.Conflict{
				Table: "user", Identity: fmt.Sprintf("username=%s", username), Cause: err,
			}
		}
		return kdb.User{}, xe.Wrap(err)
	}

	return user, nil
}

func (u *pgUser) Get(ctx context.Context, id int64) (kdb.User, error) {
	return u.getOne(
		ctx, fmt.Sprintf("user_id=%d", id),
		`select "user_id", "username", "password_hash" from "user" where "user_id" = $1`,
		id,
	)
}

func (u *pgUser) GetByName(ctx context.Context, username string) (kdb.User, error) {
	return u.getOne(
		ctx, fmt.Sprintf("username=%s", username),
		`select "user_id", "username", "password_hash" from "user" where "username" = $1`,
		username,
	)
}

func (u *pgUser) getOne(ctx context.Context, identity string, query string, arg any) (kdb.User, error) {
	conn, err := u.pool.Acquire(ctx)
	if err != nil {
		return kdb.User{}, xe.Wrap(err)
	}
	defer conn.Release()

	user := kdb.User{}
	if err := conn.QueryRow(ctx, query, arg).Scan(
		&user.Id, &user.Username, &user.PasswordHash,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kdb.User{}, kerr.Missing{Table: "user", Identity: identity}
		}
		return kdb.User{}, xe.Wrap(err)
	}
	return user, nil
}
