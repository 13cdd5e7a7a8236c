// Package keychain keeps named sets of signing keys in the database,
// and signs/verifies JWS (JSON Web Signature) tokens with them.
package keychain

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/opst/contactbook/pkg/auth/keychain/key"
	kdb "github.com/opst/contactbook/pkg/db"
	xe "github.com/opst/contactbook/pkg/errors"
)

var (
	// no key in the keychain can verify the token.
	ErrNoKeyFound = errors.New("no key found")

	// the token is malformed, has bad signature or unacceptable claims (e.g. expired).
	ErrInvalidToken = errors.New("invalid token")
)

// NewJWS signs claims with k, and puts kid in the header.
func NewJWS[C jwt.Claims](kid string, k key.Key, claims C) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = kid
	return tok.SignedString(k.ToSign())
}

// VerifyJWS parses token into a new C, verifying it with a key in kc.
//
// The key is chosen by "kid" and "alg" in the header, and should be unexpired.
// Tokens without "exp" are rejected.
//
//	claims, err := VerifyJWS[SessionClaims](kc, token)  // claims is *SessionClaims
//
// Errors are ErrNoKeyFound, ErrInvalidToken or others from jwt.
func VerifyJWS[C any, P interface {
	*C
	jwt.Claims
}](kc Keychain, token string) (P, error) {
	now := time.Now()
	claims := P(new(C))

	keyfunc := func(t *jwt.Token) (any, error) {
		req := []KeyRequirement{WithExpAfter(now), WithAlg(t.Method.Alg())}
		if kid, ok := t.Header["kid"].(string); ok {
			req = append(req, WithKeyId(kid))
		}
		_, k, ok := kc.GetKey(req...)
		if !ok {
			return nil, ErrNoKeyFound
		}
		return k.ToVerify(), nil
	}

	if _, err := jwt.ParseWithClaims(
		token, claims, keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	); err != nil {
		switch {
		case errors.Is(err, ErrNoKeyFound):
			return nil, err
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenExpired),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenInvalidClaims):
			return nil, errors.Join(ErrInvalidToken, err)
		}
		return nil, err
	}
	return claims, nil
}

type KeyRequirement func(kid string, k key.Key) bool

// WithAlg returns a KeyRequirement that filters the key by the algorithm.
func WithAlg(alg string) KeyRequirement {
	return func(_ string, k key.Key) bool {
		return k.Alg() == alg
	}
}

// WithExpAfter returns a KeyRequirement that filters the key by the expiration time.
//
// It returns true if the key's expiration time is after the given time.
func WithExpAfter(t time.Time) KeyRequirement {
	return func(_ string, k key.Key) bool {
		return k.Exp().After(t)
	}
}

// WithKeyId returns a KeyRequirement that filters the key by the Key ID.
func WithKeyId(kid string) KeyRequirement {
	return func(_kid string, _ key.Key) bool {
		return _kid == kid
	}
}

type Keychain interface {
	// Name of the keychain
	Name() string

	// GetKey a key from the keychain
	//
	// # Args
	//
	// - req: Requirements of the key. If multiple keys satisfy requirements, random one is returned.
	//
	// # Returns
	//
	// - string: Key ID of the key found. If not found, it returns an empty string
	//
	// - Key: The key found. If not found, it returns nil
	//
	// - bool: True if the key is found
	GetKey(req ...KeyRequirement) (string, key.Key, bool)

	// Set a key in the keychain. If the key for Key ID exists, it is overwritten.
	Set(kid string, key key.Key)

	// Delete a key from the keychain
	Delete(kid string)

	// Update stores the keychain into the database.
	//
	// Only unexpired keys are stored, and expired ones are dropped.
	// After that, the keychain reflects the stored state.
	Update(ctx context.Context) error
}

type keychain struct {
	name  string
	keys  map[string]key.Key
	store kdb.KeychainInterface
}

// Get loads the keychain named keychainName. Unknown keychain is empty.
func Get(ctx context.Context, store kdb.KeychainInterface, keychainName string) (Keychain, error) {
	kc := &keychain{
		name:  keychainName,
		keys:  map[string]key.Key{},
		store: store,
	}
	if err := kc.load(ctx); err != nil {
		return nil, err
	}
	return kc, nil
}

func (kc *keychain) load(ctx context.Context) error {
	stored, err := kc.store.GetKeys(ctx, kc.name)
	if err != nil {
		return xe.Wrap(err)
	}
	keys := make(map[string]key.Key, len(stored))
	for _, m := range stored {
		k, err := key.Unmarshal(m)
		if err != nil {
			return xe.Wrap(err)
		}
		keys[m.KeyId] = k
	}
	kc.keys = keys
	return nil
}

func (kc *keychain) Name() string {
	return kc.name
}

func (kc *keychain) GetKey(req ...KeyRequirement) (string, key.Key, bool) {
KEY:
	for kid, key := range kc.keys {
		for _, r := range req {
			if !r(kid, key) {
				continue KEY
			}
		}
		return kid, key, true
	}
	return "", nil, false
}

func (kc *keychain) Set(kid string, key key.Key) {
	kc.keys[kid] = key
}

func (kc *keychain) Delete(kid string) {
	delete(kc.keys, kid)
}

func (kc *keychain) Update(ctx context.Context) error {
	now := time.Now()

	keys := []kdb.SigningKey{}
	for kid, key := range kc.keys {
		if key.Exp().After(now) {
			keys = append(keys, key.Marshal(kid))
		}
	}
	if err := kc.store.SetKeys(ctx, kc.name, keys); err != nil {
		return xe.Wrap(err)
	}
	return kc.load(ctx)
}
