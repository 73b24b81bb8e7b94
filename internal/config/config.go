package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process-wide configuration. It is loaded once at startup and
// must be treated as read-only afterwards.
type Config struct {
	EnvVars
	OAuth
}

// OAuth holds the timing and identification knobs for the login handshake.
type OAuth struct {
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	PendingAuthTTL time.Duration `env:"PENDING_AUTH_TTL" envDefault:"10m"`
	LoginTimeout   time.Duration `env:"LOGIN_TIMEOUT" envDefault:"5m"`
	UserAgent      string        `env:"USER_AGENT" envDefault:"Renox-Loader"`
}

// DotEnvFile is read by Load when present in the working directory.
const DotEnvFile = ".env"

// Load reads the configuration from the process environment, falling back to
// values in an optional DotEnvFile. Required provider credentials are not
// checked here, see ClientID and Credentials.
func Load() (*Config, error) {
	return LoadFile(DotEnvFile)
}

// LoadFile is Load with an explicit dotenv path. A missing file is ignored and
// process variables take precedence over the file.
func LoadFile(path string) (*Config, error) {
	environment, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("[config Load] reading %s: %w", path, err)
		}
		environment = map[string]string{}
	}
	for k, v := range env.ToMap(os.Environ()) {
		environment[k] = v
	}
	return LoadFrom(environment)
}

// LoadFrom reads the configuration from the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	c := &Config{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, fmt.Errorf("[config Load] %w", err)
	}
	return c, nil
}
