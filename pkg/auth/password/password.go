// Package password hashes and verifies login passwords with bcrypt.
package password

import (
	"errors"

	xe "github.com/opst/contactbook/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch means the password does not match the hash.
var ErrMismatch = errors.New("password mismatch")

type Hasher interface {
	// Hash returns a salted hash of the password.
	Hash(password string) (string, error)

	// Verify returns nil when the password matches the hash, ErrMismatch if not.
	//
	// Malformed hashes are reported as other errors.
	Verify(hash string, password string) error
}

type bcryptHasher struct {
	cost int
}

// New returns a bcrypt Hasher.
//
// cost out of [bcrypt.MinCost, bcrypt.MaxCost] is replaced with bcrypt.DefaultCost.
func New(cost int) Hasher {
	if cost < bcrypt.MinCost || bcrypt.MaxCost < cost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", xe.Wrap(err)
	}
	return string(hash), nil
}

func (b *bcryptHasher) Verify(hash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return xe.Wrap(err)
}
