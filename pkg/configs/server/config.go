package server

import "time"

type ServerConfig struct {
	port         int32
	database     *DatabaseConfig
	session      *SessionConfig
	password     *PasswordConfig
	housekeeping *HousekeepingConfig
	bootstrap    []BootstrapUser
}

// port to listen
func (c *ServerConfig) Port() int32 {
	return c.port
}

func (c *ServerConfig) Database() *DatabaseConfig {
	return c.database
}

func (c *ServerConfig) Session() *SessionConfig {
	return c.session
}

func (c *ServerConfig) Password() *PasswordConfig {
	return c.password
}

func (c *ServerConfig) Housekeeping() *HousekeepingConfig {
	return c.housekeeping
}

// Users to be created on start up, when missing.
func (c *ServerConfig) Bootstrap() []BootstrapUser {
	return c.bootstrap
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	driver           string
	uri              string
	schemaRepository string
}

// "postgres" or "sqlite"
func (d *DatabaseConfig) Driver() string {
	return d.driver
}

// Connection string for postgres, or file path for sqlite.
func (d *DatabaseConfig) URI() string {
	return d.uri
}

// Directory of postgres schema repository. Empty means "do not watch schema".
func (d *DatabaseConfig) SchemaRepository() string {
	return d.schemaRepository
}

type SessionConfig struct {
	ttl      time.Duration
	cookie   string
	secure   bool
	keychain string
}

func (s *SessionConfig) TTL() time.Duration {
	return s.ttl
}

// name of the session cookie
func (s *SessionConfig) Cookie() string {
	return s.cookie
}

// whether the session cookie is sent over HTTPS only.
func (s *SessionConfig) Secure() bool {
	return s.secure
}

// name of the keychain holding keys to sign session tokens.
func (s *SessionConfig) Keychain() string {
	return s.keychain
}

type PasswordConfig struct {
	cost int
}

// bcrypt cost. 0 means the default cost.
func (p *PasswordConfig) Cost() int {
	return p.cost
}

type HousekeepingConfig struct {
	interval time.Duration
}

// interval to purge expired sessions.
func (h *HousekeepingConfig) Interval() time.Duration {
	return h.interval
}

type BootstrapUser struct {
	username string
	password string
}

func (b BootstrapUser) Username() string {
	return b.username
}

func (b BootstrapUser) Password() string {
	return b.password
}
