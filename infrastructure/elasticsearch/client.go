// Package elasticsearch builds go-elasticsearch clients and waits for the
// cluster to answer before handing them out.
package elasticsearch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	infracontext "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/context"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/retry"
)

const defaultURL = "http://localhost:9200"

// Config holds client settings. Only one auth mode is used: API key,
// then cloud ID with API key, then basic auth.
type Config struct {
	URL      string `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"` //nolint:gosec // G117: connection config
	APIKey   string `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	CloudID  string `env:"ELASTICSEARCH_CLOUD_ID" yaml:"cloud_id"`

	TLS TLSConfig `yaml:"tls"`

	MaxRetries  int           `yaml:"max_retries"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
	// Connect controls the startup ping loop.
	Connect retry.Config `yaml:"-"`

	// Transport replaces the HTTP transport, mainly for tests.
	Transport http.RoundTripper `yaml:"-"`
}

// TLSConfig holds optional TLS material.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	CertFile           string `yaml:"cert_file"`
	KeyFile            string `yaml:"key_file"`
	CAFile             string `yaml:"ca_file"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = infracontext.DefaultPingTimeout
	}
	if c.Connect.MaxAttempts == 0 {
		c.Connect = retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2,
		}
	}
	if c.Connect.IsRetryable == nil {
		c.Connect.IsRetryable = retryable
	}
}

// NewClient creates a client and pings the cluster with backoff until it answers.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	url := normalizeURL(cfg.URL)
	esCfg := es.Config{
		Addresses:  []string{url},
		MaxRetries: cfg.MaxRetries,
		Transport:  cfg.Transport,
	}
	if esCfg.Transport == nil {
		transport, err := newTransport(cfg.TLS)
		if err != nil {
			return nil, err
		}
		esCfg.Transport = transport
	}

	switch {
	case cfg.APIKey != "" && cfg.CloudID != "":
		esCfg.CloudID = cfg.CloudID
		esCfg.Addresses = nil
		esCfg.APIKey = cfg.APIKey
	case cfg.APIKey != "":
		esCfg.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	log.Info("Verifying Elasticsearch connection", logger.String("url", url))
	err = retry.Do(ctx, cfg.Connect, func(ctx context.Context) error {
		return infracontext.PingWithin(ctx, cfg.PingTimeout, func(pingCtx context.Context) error {
			return ping(pingCtx, client)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("connect to elasticsearch at %s: %w", url, err)
	}
	log.Info("Elasticsearch connection established", logger.String("url", url))

	return client, nil
}

func normalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return defaultURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

func newTransport(cfg TLSConfig) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.Enabled {
		return transport, nil
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for local clusters
		MinVersion:         tls.VersionTLS12,
	}
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("CA file contains no certificates")
		}
		tlsCfg.RootCAs = pool
	}

	transport.TLSClientConfig = tlsCfg
	return transport, nil
}

// errRejected marks a 4xx ping response, which retrying will not fix.
var errRejected = errors.New("elasticsearch rejected ping")

func retryable(err error) bool {
	return !errors.Is(err, errRejected)
}

func ping(ctx context.Context, client *es.Client) error {
	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if res.StatusCode < http.StatusInternalServerError {
			return fmt.Errorf("%w: status %s: %s", errRejected, res.Status(), body)
		}
		return fmt.Errorf("ping status %s: %s", res.Status(), body)
	}
	return nil
}
