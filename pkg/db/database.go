package db

import "context"

// ContactDatabase is the root object of the storage layer.
//
// Entrypoints should create one of its implementations
// (pkg/db/postgres or pkg/db/sqlite) and pass its parts to handlers.
type ContactDatabase interface {
	Users() UserInterface
	Profiles() ProfileInterface
	Sessions() SessionInterface
	Keychain() KeychainInterface
	Schema() SchemaInterface

	// Ping checks the database is reachable.
	Ping(ctx context.Context) error

	Close() error
}
