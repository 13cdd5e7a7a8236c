package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	kdb "github.com/opst/contactbook/pkg/db"
	kpgkc "github.com/opst/contactbook/pkg/db/postgres/keychain"
	kpool "github.com/opst/contactbook/pkg/db/postgres/pool"
	kpgprof "github.com/opst/contactbook/pkg/db/postgres/profile"
	kpgschema "github.com/opst/contactbook/pkg/db/postgres/schema"
	kpgsess "github.com/opst/contactbook/pkg/db/postgres/session"
	kpguser "github.com/opst/contactbook/pkg/db/postgres/user"
	xe "github.com/opst/contactbook/pkg/errors"
)

type contactDBPostgres struct {
	pool     *pgxpool.Pool
	wrapped  kpool.Pool
	users    kdb.UserInterface
	profiles kdb.ProfileInterface
	sessions kdb.SessionInterface
	keychain kdb.KeychainInterface
	schema   kdb.SchemaInterface
}

type Config struct {
	SchemaRepository string
}

func DefaultConfig() Config {
	return Config{}
}

type Option func(*Config) *Config

// WithSchemaRepository sets the path to the schema repository.
//
// Without this, Schema() cannot upgrade the database.
func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

// New connects to PostgreSQL at url.
func New(
	ctx context.Context,
	url string,
	options ...Option,
) (kdb.ContactDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}

	return build(pool, c), nil
}

func build(pool *pgxpool.Pool, c Config) kdb.ContactDatabase {
	p := kpool.Wrap(pool)
	var schema kdb.SchemaInterface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(p, c.SchemaRepository)
	}

	return &contactDBPostgres{
		pool:     pool,
		wrapped:  p,
		users:    kpguser.New(p),
		profiles: kpgprof.New(p),
		sessions: kpgsess.New(p),
		keychain: kpgkc.New(p),
		schema:   schema,
	}
}

func (k *contactDBPostgres) Users() kdb.UserInterface {
	return k.users
}

func (k *contactDBPostgres) Profiles() kdb.ProfileInterface {
	return k.profiles
}

func (k *contactDBPostgres) Sessions() kdb.SessionInterface {
	return k.sessions
}

func (k *contactDBPostgres) Keychain() kdb.KeychainInterface {
	return k.keychain
}

func (k *contactDBPostgres) Schema() kdb.SchemaInterface {
	return k.schema
}

func (k *contactDBPostgres) Ping(ctx context.Context) error {
	return k.wrapped.Ping(ctx)
}

func (k *contactDBPostgres) Close() error {
	k.pool.Close()
	return nil
}
