package console

import (
	"errors"
	"strings"

	"github.com/ansycloud/console/sdk/authn"
	"github.com/kelseyhightower/envconfig"
)

const envconfigPrefix = "CONSOLE"

// We use an exported interface to govern access to our config because the
// underlying struct has fields we don't want to expose.
type Config interface {
	// APIAddress is the address of the backend API server.
	APIAddress() string
	// IgnoreAPICertWarnings permits TLS connections to a backend API server
	// with an untrusted certificate.
	IgnoreAPICertWarnings() bool
	Port() int
	TLSEnabled() bool
	TLSCertPath() string
	TLSKeyPath() string
	// LoginPath is where users are sent when they need to log in.
	LoginPath() string
	// RefreshCookieName is the name of the cookie the backend uses to carry the
	// refresh credential. Only its presence is ever checked.
	RefreshCookieName() string
	// MarkerPath is where the session marker is kept. If empty, the marker is
	// kept in the user's home directory.
	MarkerPath() string
}

type config struct {
	APIAddressAttr            string `envconfig:"API_ADDRESS"`
	IgnoreAPICertWarningsAttr bool   `envconfig:"IGNORE_API_CERT_WARNINGS"`
	PortAttr                  int    `envconfig:"PORT"`
	TLSEnabledAttr            bool   `envconfig:"TLS_ENABLED"`
	TLSCertPathAttr           string `envconfig:"TLS_CERT_PATH"`
	TLSKeyPathAttr            string `envconfig:"TLS_KEY_PATH"`
	LoginPathAttr             string `envconfig:"LOGIN_PATH"`
	RefreshCookieNameAttr     string `envconfig:"REFRESH_COOKIE_NAME"`
	MarkerPathAttr            string `envconfig:"MARKER_PATH"`
}

// ConfigOverrides holds values, typically taken from command line flags, that
// take precedence over the environment. Zero values override nothing.
type ConfigOverrides struct {
	APIAddress            string
	IgnoreAPICertWarnings bool
	Port                  int
}

// NewConfigWithDefaults returns a Config object with default values already
// applied. Callers are then free to set custom values for the remaining fields
// and/or override default values.
func NewConfigWithDefaults() Config {
	return &config{
		PortAttr:              3000,
		LoginPathAttr:         authn.DefaultLoginPath,
		RefreshCookieNameAttr: "refreshToken",
	}
}

// GetConfigFromEnvironment returns configuration derived from environment
// variables
func GetConfigFromEnvironment() (Config, error) {
	return GetConfig(ConfigOverrides{})
}

// GetConfig returns configuration derived from environment variables, with
// any non-zero overrides applied on top.
func GetConfig(overrides ConfigOverrides) (Config, error) {
	c := NewConfigWithDefaults().(*config)
	if err := envconfig.Process(envconfigPrefix, c); err != nil {
		return c, err
	}

	if overrides.APIAddress != "" {
		c.APIAddressAttr = overrides.APIAddress
	}
	if overrides.IgnoreAPICertWarnings {
		c.IgnoreAPICertWarningsAttr = true
	}
	if overrides.Port != 0 {
		c.PortAttr = overrides.Port
	}

	if c.APIAddressAttr == "" {
		return c, errors.New(
			"a value is required for the API_ADDRESS environment variable",
		)
	}
	c.APIAddressAttr = strings.TrimSuffix(c.APIAddressAttr, "/")

	if !strings.HasPrefix(c.LoginPathAttr, "/") {
		return c, errors.New(
			"the LOGIN_PATH environment variable must begin with a /",
		)
	}

	if c.TLSEnabledAttr {
		if c.TLSCertPathAttr == "" {
			return c, errors.New(
				"with TLS enabled, a value is required for the " +
					"TLS_CERT_PATH environment variable",
			)
		}
		if c.TLSKeyPathAttr == "" {
			return c, errors.New(
				"with TLS enabled, a value is required for the " +
					"TLS_KEY_PATH environment variable",
			)
		}
	}

	return c, nil
}

func (c *config) APIAddress() string {
	return c.APIAddressAttr
}

func (c *config) IgnoreAPICertWarnings() bool {
	return c.IgnoreAPICertWarningsAttr
}

func (c *config) Port() int {
	return c.PortAttr
}

func (c *config) TLSEnabled() bool {
	return c.TLSEnabledAttr
}

func (c *config) TLSCertPath() string {
	return c.TLSCertPathAttr
}

func (c *config) TLSKeyPath() string {
	return c.TLSKeyPathAttr
}

func (c *config) LoginPath() string {
	return c.LoginPathAttr
}

func (c *config) RefreshCookieName() string {
	return c.RefreshCookieNameAttr
}

func (c *config) MarkerPath() string {
	return c.MarkerPathAttr
}
