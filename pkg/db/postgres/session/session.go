package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	kdb "github.com/opst/contactbook/pkg/db"
	kerr "github.com/opst/contactbook/pkg/db/errors"
	kpgerr "github.com/opst/contactbook/pkg/db/postgres/errors"
	kpool "github.com/opst/contactbook/pkg/db/postgres/pool"
	xe "github.com/opst/contactbook/pkg/errors"
)

type pgSession struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.SessionInterface {
	return &pgSession{pool: pool}
}

func (s *pgSession) Add(ctx context.Context, session kdb.Session) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	if _, err := conn.Exec(
		ctx,
		`insert into "session" ("session_id", "user_id", "expires_at") values ($1, $2, $3)`,
		session.Id, session.UserId, session.ExpiresAt,
	); err != nil {
		if kpgerr.IsUniqueViolation(err) {
			return kerr.Conflict{Table: "session", Identity: fmt.Sprintf("session_id=%s", session.Id), Cause: err}
		}
		if kpgerr.IsForeignKeyViolation(err) {
			return kerr.Missing{Table: "user", Identity: fmt.Sprintf("user_id=%d", session.UserId)}
		}
		return xe.Wrap(err)
	}
	return nil
}

func (s *pgSession) Get(ctx context.Context, id string) (kdb.Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return kdb.Session{}, xe.Wrap(err)
	}
	defer conn.Release()

	session := kdb.Session{}
	if err := conn.QueryRow(
		ctx,
		`select "session_id", "user_id", "expires_at" from "session" where "session_id" = $1`,
		id,
	).Scan(&session.Id, &session.UserId, &session.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kdb.Session{}, kerr.Missing{Table: "session", Identity: fmt.Sprintf("session_id=%s", id)}
		}
		return kdb.Session{}, xe.Wrap(err)
	}
	return session, nil
}

func (s *pgSession) Remove(ctx context.Context, id string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `delete from "session" where "session_id" = $1`, id); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (s *pgSession) Purge(ctx context.Context, now time.Time) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer conn.Release()

	ctag, err := conn.Exec(ctx, `delete from "session" where "expires_at" <= $1`, now)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	return int(ctag.RowsAffected()), nil
}
