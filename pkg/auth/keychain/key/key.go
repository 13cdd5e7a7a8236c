// Package key defines signing keys for session tokens and policies issuing them.
package key

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	kdb "github.com/opst/contactbook/pkg/db"
)

type Key interface {
	// Name of the algorithm
	Alg() string

	// Expiration time of the key
	Exp() time.Time

	// Key to sign messages.
	//
	// Almost always it is Private key
	ToSign() any

	// Key to verify messages.
	//
	// Almost always it is Public key.
	ToVerify() any

	// Equal returns true if the key is equal to the other key
	Equal(k Key) bool

	// String returns the key in string format. Secrets are not shown.
	String() string

	// Marshal returns the stored form of the key, with Key ID kid.
	Marshal(kid string) kdb.SigningKey

	unmarshal(kdb.SigningKey) error
}

// Unmarshal restores a Key from its stored form.
func Unmarshal(m kdb.SigningKey) (Key, error) {
	switch m.Alg {
	case jwt.SigningMethodHS256.Name:
		k := &hs256Key{}
		if err := k.unmarshal(m); err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", m.Alg)
	}
}

type KeyPolicy interface {
	// Issue a new key
	Issue() (Key, error)
}
