package db

import (
	"context"
	"time"
)

// Session is a server side record of a logged-in client.
type Session struct {
	// random, unguessable id. It is also the "jti" of the session token.
	Id        string
	UserId    int64
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s Session) Equal(o Session) bool {
	return s.Id == o.Id && s.UserId == o.UserId && s.ExpiresAt.Equal(o.ExpiresAt)
}

type SessionInterface interface {
	// Add stores a new session.
	//
	// ErrConflict is returned when the id is used already,
	// and ErrMissing when the user does not exist.
	Add(ctx context.Context, session Session) error

	// Get returns the session, or ErrMissing.
	//
	// Expired sessions are returned as they are. Callers check Expired.
	Get(ctx context.Context, id string) (Session, error)

	// Remove deletes the session. Removing unknown session is not an error.
	Remove(ctx context.Context, id string) error

	// Purge deletes sessions expired at the time, and returns how many are deleted.
	Purge(ctx context.Context, now time.Time) (int, error)
}
