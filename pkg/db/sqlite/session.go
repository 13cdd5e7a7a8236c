package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	kdb "github.com/opst/contactbook/pkg/db"
	kerr "github.com/opst/contactbook/pkg/db/errors"
	xe "github.com/opst/contactbook/pkg/errors"
)

type sessions struct {
	db *sql.DB
}

var _ kdb.SessionInterface = &sessions{}

func (s *sessions) Add(ctx context.Context, session kdb.Session) error {
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO session (session_id, user_id, expires_at) VALUES (?, ?, ?)`,
		session.Id, session.UserId, toMillis(session.ExpiresAt),
	); err != nil {
		if isUniqueViolation(err) {
			return kerr.Conflict{Table: "session", Identity: identity("session_id", session.Id), Cause: err}
		}
		if isForeignKeyViolation(err) {
			return kerr.Missing{Table: "user", Identity: identity("user_id", session.UserId)}
		}
		return xe.Wrap(err)
	}
	return nil
}

func (s *sessions) Get(ctx context.Context, id string) (kdb.Session, error) {
	session := kdb.Session{}
	var expiresAt int64
	if err := s.db.QueryRowContext(
		ctx,
		`SELECT session_id, user_id, expires_at FROM session WHERE session_id = ?`,
		id,
	).Scan(&session.Id, &session.UserId, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kdb.Session{}, kerr.Missing{Table: "session", Identity: identity("session_id", id)}
		}
		return kdb.Session{}, xe.Wrap(err)
	}
	session.ExpiresAt = fromMillis(expiresAt)
	return session, nil
}

func (s *sessions) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE session_id = ?`, id); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (s *sessions) Purge(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, xe.Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, xe.Wrap(err)
	}
	return int(n), nil
}
