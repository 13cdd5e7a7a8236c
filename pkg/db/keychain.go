package db

import (
	"context"
	"time"
)

// SigningKey is the stored form of a key to sign/verify session tokens.
type SigningKey struct {
	KeyId    string
	Alg      string
	Exp      time.Time
	ToSign   []byte
	ToVerify []byte
}

// KeychainInterface stores named sets of signing keys.
type KeychainInterface interface {
	// Lock locks a keychain entry by name and executes the critical section.
	//
	// # Args
	//
	// - ctx (context.Context): The context of the operation.
	//
	// - name (string): The name of the keychain.
	//
	// - criticalSection (func() error): The critical section to execute.
	// If and only if in the critical section, you can update the keychain.
	// If the critical section returns an error, the lock is released and the error is returned.
	//
	// # Returns
	//
	// - error: An error if the operation failed.
	Lock(ctx context.Context, name string, criticalSection func(ctx context.Context) error) error

	// GetKeys returns all keys in the keychain. Unknown keychain has no keys.
	GetKeys(ctx context.Context, name string) ([]SigningKey, error)

	// SetKeys replaces all keys in the keychain with keys.
	SetKeys(ctx context.Context, name string, keys []SigningKey) error
}
