package db

import "context"

type User struct {
	Id       int64
	Username string

	// salted hash of the password. Never the password itself.
	PasswordHash string
}

type UserInterface interface {
	// Register creates a new user.
	//
	// # Args
	//
	// - ctx
	//
	// - username: unique name of the user
	//
	// - passwordHash: already hashed password
	//
	// # Returns
	//
	// - User: the user created
	//
	// - error: ErrConflict when the username is taken.
	Register(ctx context.Context, username string, passwordHash string) (User, error)

	// Get returns the user with the id, or ErrMissing.
	Get(ctx context.Context, id int64) (User, error)

	// GetByName returns the user with the username, or ErrMissing.
	GetByName(ctx context.Context, username string) (User, error)
}
