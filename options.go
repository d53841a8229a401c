package taskclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/viant/afs"
	"github.com/viant/taskclient/client/auth/identity"
	"github.com/viant/taskclient/client/auth/store"
	redisstore "github.com/viant/taskclient/client/auth/store/redis"
	"github.com/viant/taskclient/internal/logx"
	"gopkg.in/yaml.v3"
)

// Store types.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// ClientOptions
//
// defines options for configuring a tasks client.
type ClientOptions struct {
	BaseURL          string        `yaml:"baseURL" json:"baseURL,omitempty" short:"u" long:"url" description:"tasks API URL" env:"TASKS_BASE_URL"`
	Scopes           []string      `yaml:"scopes,omitempty" json:"scopes,omitempty" short:"s" long:"scope" description:"resource scope"`
	Auth             ClientAuth    `yaml:"auth,omitempty" json:"auth,omitempty" group:"auth"`
	Store            ClientStore   `yaml:"store,omitempty" json:"store,omitempty" group:"store"`
	Invalidation     string        `yaml:"invalidation,omitempty" json:"invalidation,omitempty" long:"invalidation" description:"claims challenge invalidation" choice:"never" choice:"on-retry-success" env:"TASKS_INVALIDATION"`
	ChallengeMethods []string      `yaml:"challengeMethods,omitempty" json:"challengeMethods,omitempty" long:"challenge-method" description:"methods with claims challenge recovery"`
	RateLimit        float64       `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty" long:"rate-limit" description:"max requests per second" env:"TASKS_RATE_LIMIT"`
	RateBurst        int           `yaml:"rateBurst,omitempty" json:"rateBurst,omitempty" long:"rate-burst" description:"rate limit burst" env:"TASKS_RATE_BURST"`
	Log              logx.Config   `yaml:"log,omitempty" json:"log,omitempty" group:"log" namespace:"log"`
	Timeout          time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" long:"timeout" description:"network timeout (connect, TLS handshake, response headers)" env:"TASKS_TIMEOUT"`

	// HTTPTransport overrides the network transport under the auth layer.
	HTTPTransport http.RoundTripper `yaml:"-" json:"-"`
}

// ClientAuth defines authentication options.
type ClientAuth struct {
	OAuth2ConfigURL string `yaml:"oauth2ConfigURL,omitempty" json:"oauth2ConfigURL,omitempty" short:"c" long:"config" description:"oauth2 config file" env:"TASKS_OAUTH2_CONFIG_URL"`
	EncryptionKey   string `yaml:"encryptionKey,omitempty" json:"encryptionKey,omitempty" short:"k" long:"key" description:"encryption key" env:"TASKS_ENCRYPTION_KEY"`
	// RedirectURL is the callback the redirect flow registers; defaults to the oauth2 config's.
	RedirectURL string `yaml:"redirectURL,omitempty" json:"redirectURL,omitempty" long:"redirect-url" description:"redirect flow callback URL" env:"TASKS_REDIRECT_URL"`

	// Application allows injecting the identity application (tests, embedding).
	Application identity.Application `yaml:"-" json:"-"`
}

// ClientStore defines where claims challenges are kept.
type ClientStore struct {
	Type   string            `yaml:"type,omitempty" json:"type,omitempty" long:"store" description:"claims challenge store" choice:"memory" choice:"file" choice:"redis" choice:"sqlite" env:"TASKS_STORE"`
	URL    string            `yaml:"url,omitempty" json:"url,omitempty" long:"store-url" description:"file store URL or sqlite DSN" env:"TASKS_STORE_URL"`
	MaxAge time.Duration     `yaml:"maxAge,omitempty" json:"maxAge,omitempty" long:"store-max-age" description:"claims challenge lifetime" env:"TASKS_STORE_MAX_AGE"`
	Redis  redisstore.Config `yaml:"redis,omitempty" json:"redis,omitempty" group:"redis" namespace:"redis"`

	// Store allows injecting a store shared with other components.
	Store store.Store `yaml:"-" json:"-"`
}

// Init sets defaults.
func (c *ClientOptions) Init() {
	if c.Store.Type == "" {
		c.Store.Type = StoreMemory
	}
	if c.Timeout == 0 {
		c.Timeout = time.Minute
	}
}

// Validate checks the options.
func (c *ClientOptions) Validate() error {
	if c.BaseURL == "" {
		return errors.New("tasks base URL was empty")
	}
	if c.Auth.Application == nil && c.Auth.OAuth2ConfigURL == "" {
		return errors.New("oauth2 config URL was empty")
	}
	switch c.Store.Type {
	case StoreMemory, StoreRedis:
	case StoreFile, StoreSQLite:
		if c.Store.URL == "" && c.Store.Store == nil {
			return fmt.Errorf("%v store requires a URL", c.Store.Type)
		}
	default:
		return fmt.Errorf("unsupported store type: %v", c.Store.Type)
	}
	return nil
}

// ApplyEnv overrides options with TASKS_* environment variables.
func (c *ClientOptions) ApplyEnv() error {
	if err := envdecode.Decode(c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("failed to decode environment: %w", err)
	}
	return nil
}

// LoadOptions reads YAML options from URL (any afs supported location), then
// applies environment overrides and defaults. An empty URL uses the environment only.
func LoadOptions(ctx context.Context, URL string) (*ClientOptions, error) {
	ret := &ClientOptions{}
	if URL != "" {
		fs := afs.New()
		data, err := fs.DownloadWithURL(ctx, URL)
		if err != nil {
			return nil, fmt.Errorf("failed to load options %v: %w", URL, err)
		}
		if err = yaml.Unmarshal(data, ret); err != nil {
			return nil, fmt.Errorf("failed to parse options %v: %w", URL, err)
		}
	}
	if err := ret.ApplyEnv(); err != nil {
		return nil, err
	}
	ret.Init()
	return ret, nil
}
