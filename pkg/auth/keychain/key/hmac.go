package key

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	kdb "github.com/opst/contactbook/pkg/db"
)

type hs256policy struct {
	ttl    time.Duration
	keyLen uint
}

func (f hs256policy) Issue() (Key, error) {
	k := make([]byte, f.keyLen)
	if _, err := rand.Read(k); err != nil {
		return nil, err
	}

	return &hs256Key{
		exp:    time.Now().Add(f.ttl).Truncate(time.Second),
		secret: k,
	}, nil
}

// HS256 returns a KeyPolicy for HMAC-SHA256 algorithm.
//
// # Args
//
// - ttl: Time to live of new keys
//
// - klen: Length of the key in *bytes*, not bits.
func HS256(ttl time.Duration, klen uint) KeyPolicy {
	return hs256policy{ttl: ttl, keyLen: klen}
}

// HMAC signs and verifies with the same secret.
type hs256Key struct {
	exp    time.Time
	secret []byte
}

func (*hs256Key) Alg() string {
	return jwt.SigningMethodHS256.Name
}

func (hk *hs256Key) Exp() time.Time {
	return hk.exp
}

func (hk *hs256Key) ToSign() any {
	return hk.secret
}

func (hk *hs256Key) ToVerify() any {
	return hk.secret
}

func (hk *hs256Key) Equal(k Key) bool {
	other, ok := k.(*hs256Key)
	if !ok {
		return false
	}
	return hk.exp.Equal(other.exp) && bytes.Equal(hk.secret, other.secret)
}

func (hk *hs256Key) Marshal(kid string) kdb.SigningKey {
	return kdb.SigningKey{
		KeyId:    kid,
		Alg:      hk.Alg(),
		Exp:      hk.exp,
		ToSign:   hk.secret,
		ToVerify: hk.secret,
	}
}

func (hk *hs256Key) unmarshal(m kdb.SigningKey) error {
	if m.Alg != hk.Alg() {
		return fmt.Errorf("invalid algorithm: %s", m.Alg)
	}
	if !bytes.Equal(m.ToSign, m.ToVerify) {
		return fmt.Errorf("HS256 key %s has different secrets to sign and verify", m.KeyId)
	}
	hk.exp = m.Exp
	hk.secret = m.ToSign
	return nil
}

func (hk *hs256Key) String() string {
	return fmt.Sprintf(
		"Key{Alg: %s, Exp: %s, Secret: (%d bytes)}",
		hk.Alg(), hk.exp.Format(time.RFC3339), len(hk.secret),
	)
}
