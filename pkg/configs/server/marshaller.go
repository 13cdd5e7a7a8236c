// Package server loads the configuration of contactd.
//
// Configuration is a YAML file, and environment variables prefixed with
// CONTACTBOOK_ override values in the file. For example,
//
//	CONTACTBOOK_DATABASE_URI=postgres://user:pass@db:5432/contactbook
//
// overrides `database.uri`.
package server

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding configuration.
const EnvPrefix = "CONTACTBOOK_"

// load server config from a file, and override with environment variables.
//
// args:
//   - filepath: filepath refers a config file.
//
// returns *ServerConfig, error:
//
//	When loading success, returns `(*ServerConfig, nil)`.
//	Otherwise, returns `(nil, error)`.
func LoadServerConfig(filepath string) (*ServerConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	m, err := unmarshal(content)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(m, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return seal(m)
}

// Unmarshal parses config in YAML. Environment variables are not read.
func Unmarshal(conf []byte) (*ServerConfig, error) {
	m, err := unmarshal(conf)
	if err != nil {
		return nil, err
	}
	return seal(m)
}

func unmarshal(conf []byte) (*ServerConfigMarshall, error) {
	m := &ServerConfigMarshall{}
	if err := yaml.Unmarshal(conf, m); err != nil {
		return nil, err
	}
	return m, nil
}

func seal(m *ServerConfigMarshall) (out *ServerConfig, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("misconfiguration: %v", r)
		}
	}()
	return TrySeal(m), nil
}
