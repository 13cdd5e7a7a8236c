package contactbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opst/contactbook/pkg/auth/keychain"
	"github.com/opst/contactbook/pkg/auth/keychain/key"
	"github.com/opst/contactbook/pkg/auth/password"
	"github.com/opst/contactbook/pkg/auth/session"
	sconf "github.com/opst/contactbook/pkg/configs/server"
	kdb "github.com/opst/contactbook/pkg/db"
	kpg "github.com/opst/contactbook/pkg/db/postgres"
	"github.com/opst/contactbook/pkg/db/sqlite"
	xe "github.com/opst/contactbook/pkg/errors"
)

// Contactbook bundles middlewares handlers depend on.
type Contactbook interface {
	Config() *sconf.ServerConfig
	Database() kdb.ContactDatabase
	Passwords() password.Hasher
	Sessions() session.Manager
}

type contactbook struct {
	config    *sconf.ServerConfig
	database  kdb.ContactDatabase
	passwords password.Hasher
	sessions  session.Manager
}

var _ Contactbook = &contactbook{}

// Connect opens the database configured.
//
// For postgres, schemaRepository enables schema upgrade and watch.
// It is ignored for sqlite, which carries its own migrations.
func Connect(ctx context.Context, conf *sconf.DatabaseConfig, schemaRepository string) (kdb.ContactDatabase, error) {
	switch conf.Driver() {
	case sconf.DriverPostgres:
		opts := []kpg.Option{}
		if schemaRepository != "" {
			opts = append(opts, kpg.WithSchemaRepository(schemaRepository))
		}
		return kpg.New(ctx, conf.URI(), opts...)
	case sconf.DriverSQLite:
		db, err := sqlite.Open(ctx, conf.URI())
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", conf.Driver())
	}
}

// KeyPolicy returns the policy of keys signing session tokens.
//
// A key lives longer than two sessions, so a session started just before
// its rotation stays verifiable.
func KeyPolicy(sessionTTL time.Duration) key.KeyPolicy {
	return key.HS256(2*sessionTTL+24*time.Hour, 2048/8)
}

func Attach(config *sconf.ServerConfig, database kdb.ContactDatabase) Contactbook {
	keys := keychain.NewProvider(
		config.Session().Keychain(),
		database.Keychain(),
		keychain.WithPolicy(KeyPolicy(config.Session().TTL())),
	)

	return &contactbook{
		config:    config,
		database:  database,
		passwords: password.New(config.Password().Cost()),
		sessions: session.New(
			session.Config{
				CookieName: config.Session().Cookie(),
				TTL:        config.Session().TTL(),
				Secure:     config.Session().Secure(),
			},
			database.Users(),
			database.Sessions(),
			keys,
		),
	}
}

func (c *contactbook) Config() *sconf.ServerConfig {
	return c.config
}

func (c *contactbook) Database() kdb.ContactDatabase {
	return c.database
}

func (c *contactbook) Passwords() password.Hasher {
	return c.passwords
}

func (c *contactbook) Sessions() session.Manager {
	return c.sessions
}

// Credential is a pair of username and password in plain text.
type Credential struct {
	Username string
	Password string
}

// Bootstrap registers users which are missing.
//
// Existing users are left as they are, even if their password differs.
//
// # Returns
//
// - []kdb.User: users newly registered
//
// - error
func Bootstrap(
	ctx context.Context,
	users kdb.UserInterface,
	passwords password.Hasher,
	creds []Credential,
) ([]kdb.User, error) {
	created := []kdb.User{}
	for _, cred := range creds {
		if _, err := users.GetByName(ctx, cred.Username); err == nil {
			continue
		} else if !errors.Is(err, kdb.ErrMissing) {
			return created, xe.Wrap(err)
		}

		hash, err := passwords.Hash(cred.Password)
		if err != nil {
			return created, xe.Wrap(err)
		}
		u, err := users.Register(ctx, cred.Username, hash)
		if errors.Is(err, kdb.ErrConflict) {
			// registered by someone else in the meantime.
			continue
		} else if err != nil {
			return created, xe.Wrap(err)
		}
		created = append(created, u)
	}
	return created, nil
}

// BootstrapUsers registers bootstrap users in the server config.
func BootstrapUsers(ctx context.Context, cb Contactbook) ([]kdb.User, error) {
	creds := []Credential{}
	for _, b := range cb.Config().Bootstrap() {
		creds = append(creds, Credential{Username: b.Username(), Password: b.Password()})
	}
	return Bootstrap(ctx, cb.Database().Users(), cb.Passwords(), creds)
}
