package authclient

import (
	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

var _ Config = (*EnvConfig)(nil)

// EnvConfig is a Config loaded from the environment.
type EnvConfig struct {
	BaseURL        string `env:"AUTH_CLIENT_BASE_URL"`
	AuthScheme     string `env:"AUTH_CLIENT_SCHEME" envDefault:"Token"`
	LoginPath      string `env:"AUTH_CLIENT_LOGIN_PATH" envDefault:"/auth/login/"`
	RegisterPath   string `env:"AUTH_CLIENT_REGISTER_PATH" envDefault:"/auth/register/"`
	LogoutPath     string `env:"AUTH_CLIENT_LOGOUT_PATH" envDefault:"/auth/logout/"`
	ProfilePath    string `env:"AUTH_CLIENT_PROFILE_PATH" envDefault:"/auth/profile/"`
	LoginRoute     string `env:"AUTH_CLIENT_LOGIN_ROUTE" envDefault:"/login"`
	RequestTimeout int    `env:"AUTH_CLIENT_TIMEOUT_SECONDS" envDefault:"10"`
}

// LoadConfig reads EnvConfig from the environment, honoring a local .env
// file when one is present.
func LoadConfig() (*EnvConfig, error) {
	// best effort, a missing .env is not an error
	_ = godotenv.Load()

	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse environment config")
	}

	return cfg, nil
}

func (c *EnvConfig) GetBaseURL() string      { return c.BaseURL }
func (c *EnvConfig) GetAuthScheme() string   { return c.AuthScheme }
func (c *EnvConfig) GetLoginPath() string    { return c.LoginPath }
func (c *EnvConfig) GetRegisterPath() string { return c.RegisterPath }
func (c *EnvConfig) GetLogoutPath() string   { return c.LogoutPath }
func (c *EnvConfig) GetProfilePath() string  { return c.ProfilePath }
func (c *EnvConfig) GetLoginRoute() string   { return c.LoginRoute }
func (c *EnvConfig) GetRequestTimeout() int  { return c.RequestTimeout }
