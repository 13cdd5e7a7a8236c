package server

import (
	"fmt"
	"time"
)

const (
	DefaultPort                 = 8080
	DefaultSessionTTL           = 24 * time.Hour
	DefaultSessionCookie        = "contactbook-session"
	DefaultSessionKeychain      = "session-signing-key"
	DefaultHousekeepingInterval = 10 * time.Minute
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

// Configuration of the server, as written in a file.
//
// Each field can be overridden by environment variables named in `env` tags.
type ServerConfigMarshall struct {
	Port         int32                      `yaml:"port" env:"PORT"`
	Database     DatabaseConfigMarshall     `yaml:"database" envPrefix:"DATABASE_"`
	Session      SessionConfigMarshall      `yaml:"session" envPrefix:"SESSION_"`
	Password     PasswordConfigMarshall     `yaml:"password" envPrefix:"PASSWORD_"`
	Housekeeping HousekeepingConfigMarshall `yaml:"housekeeping" envPrefix:"HOUSEKEEPING_"`
	Bootstrap    []BootstrapUserMarshall    `yaml:"bootstrap"`
}

var _ Marshalled[*ServerConfig] = &ServerConfigMarshall{}

func (s *ServerConfigMarshall) trySeal(path string) *ServerConfig {
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || 65535 < port {
		panic(fmt.Sprintf("%s.port is out of range: %d", path, port))
	}

	bootstrap := make([]BootstrapUser, 0, len(s.Bootstrap))
	for nth, b := range s.Bootstrap {
		bootstrap = append(bootstrap, b.trySeal(fmt.Sprintf("%s.bootstrap[%d]", path, nth)))
	}

	return &ServerConfig{
		port:         port,
		database:     s.Database.trySeal(path + ".database"),
		session:      s.Session.trySeal(path + ".session"),
		password:     s.Password.trySeal(path + ".password"),
		housekeeping: s.Housekeeping.trySeal(path + ".housekeeping"),
		bootstrap:    bootstrap,
	}
}

type DatabaseConfigMarshall struct {
	Driver           string `yaml:"driver" env:"DRIVER"`
	URI              string `yaml:"uri" env:"URI"`
	SchemaRepository string `yaml:"schemaRepository,omitempty" env:"SCHEMA_REPOSITORY"`
}

func (d *DatabaseConfigMarshall) trySeal(path string) *DatabaseConfig {
	driver := required(d.Driver, path+".driver")
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		panic(fmt.Sprintf(
			"%s.driver should be %q or %q, but %q",
			path, DriverPostgres, DriverSQLite, driver,
		))
	}
	return &DatabaseConfig{
		driver:           driver,
		uri:              required(d.URI, path+".uri"),
		schemaRepository: d.SchemaRepository,
	}
}

type SessionConfigMarshall struct {
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
	Cookie   string        `yaml:"cookie" env:"COOKIE"`
	Secure   bool          `yaml:"secure" env:"SECURE"`
	Keychain string        `yaml:"keychain" env:"KEYCHAIN"`
}

func (s *SessionConfigMarshall) trySeal(path string) *SessionConfig {
	if s.TTL < 0 {
		panic(fmt.Sprintf("%s.ttl should be positive: %s", path, s.TTL))
	}
	return &SessionConfig{
		ttl:      orDefault(s.TTL, DefaultSessionTTL),
		cookie:   orDefault(s.Cookie, DefaultSessionCookie),
		secure:   s.Secure,
		keychain: orDefault(s.Keychain, DefaultSessionKeychain),
	}
}

type PasswordConfigMarshall struct {
	Cost int `yaml:"cost" env:"COST"`
}

func (p *PasswordConfigMarshall) trySeal(path string) *PasswordConfig {
	if p.Cost < 0 {
		panic(fmt.Sprintf("%s.cost should not be negative: %d", path, p.Cost))
	}
	return &PasswordConfig{cost: p.Cost}
}

type HousekeepingConfigMarshall struct {
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

func (h *HousekeepingConfigMarshall) trySeal(path string) *HousekeepingConfig {
	if h.Interval < 0 {
		panic(fmt.Sprintf("%s.interval should be positive: %s", path, h.Interval))
	}
	return &HousekeepingConfig{
		interval: orDefault(h.Interval, DefaultHousekeepingInterval),
	}
}

type BootstrapUserMarshall struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (b *BootstrapUserMarshall) trySeal(path string) BootstrapUser {
	return BootstrapUser{
		username: required(b.Username, path+".username"),
		password: required(b.Password, path+".password"),
	}
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

func orDefault[T comparable](v T, d T) T {
	if v == *new(T) {
		return d
	}
	return v
}
