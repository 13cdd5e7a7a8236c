package keychain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/opst/contactbook/pkg/auth/keychain/key"
	kdb "github.com/opst/contactbook/pkg/db"
)

var ErrBadNewKey = errors.New("new key is bad. It does not satisfy the requirements")

type KeyProvider interface {
	// Provide returns a key from the keychain.
	// If no key satisfies requirements in the keychain, it issues a new key.
	Provide(ctx context.Context, req ...KeyRequirement) (string, key.Key, error)

	// GetKeychain returns the refreshed keychain.
	GetKeychain(ctx context.Context) (Keychain, error)
}

// DefaultKeyPolicy issues HS256 keys living one week.
var DefaultKeyPolicy = key.HS256(7*24*time.Hour, 2048/8)

type Option func(*keyProvider)

func WithPolicy(policy key.KeyPolicy) Option {
	return func(kp *keyProvider) {
		kp.policy = policy
	}
}

// NewProvider returns a KeyProvider for the keychain keychainName stored in store.
func NewProvider(keychainName string, store kdb.KeychainInterface, options ...Option) KeyProvider {
	base := &keyProvider{
		keychainName: keychainName,
		policy:       DefaultKeyPolicy,
		store:        store,
	}
	for _, option := range options {
		option(base)
	}
	return base
}

type keyProvider struct {
	policy       key.KeyPolicy
	keychainName string
	store        kdb.KeychainInterface
}

func (kp *keyProvider) Provide(ctx context.Context, req ...KeyRequirement) (string, key.Key, error) {
	kc, err := kp.GetKeychain(ctx)
	if err != nil {
		return "", nil, err
	}

	if kid, key, ok := kc.GetKey(req...); ok {
		return kid, key, nil
	}

	var kid string
	var k key.Key
	if err := kp.store.Lock(ctx, kc.Name(), func(ctx context.Context) error {
		// other provider may have issued a key while we were waiting for the lock.
		kc, err := kp.GetKeychain(ctx)
		if err != nil {
			return err
		}
		if _kid, _key, ok := kc.GetKey(req...); ok {
			kid, k = _kid, _key
			return nil
		}

		_kid := uuid.NewString()
		_key, err := kp.policy.Issue()
		if err != nil {
			return err
		}
		for _, r := range req {
			if !r(_kid, _key) {
				return ErrBadNewKey
			}
		}
		kc.Set(_kid, _key)
		kid, k = _kid, _key
		return kc.Update(ctx)
	}); err != nil {
		return "", nil, err
	}

	return kid, k, nil
}

func (kp *keyProvider) GetKeychain(ctx context.Context) (Keychain, error) {
	return Get(ctx, kp.store, kp.keychainName)
}
