package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
)

const (
	DefaultTimeout = 10 * time.Second
)

var ErrNoAddresses = errors.New("no elasticsearch addresses or cloud id provided")

// Search wraps the elasticsearch client used for the todo index.
type Search interface {
	Client() *elasticsearch.Client
	Ping(ctx context.Context) error
}

type Config struct {
	Addresses []string
	Username  string
	Password  string
	CloudID   string
	APIKey    string
	Timeout   time.Duration
	// SkipPing defers the connectivity check to the first request.
	SkipPing bool
}

type esClient struct {
	client  *elasticsearch.Client
	timeout time.Duration
}

func New(cfg *Config) (Search, error) {
	if len(cfg.Addresses) == 0 && cfg.CloudID == "" {
		return nil, ErrNoAddresses
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		CloudID:   cfg.CloudID,
		APIKey:    cfg.APIKey,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	es := &esClient{
		client:  client,
		timeout: cfg.Timeout,
	}

	if cfg.SkipPing {
		return es, nil
	}

	if err := es.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping elasticsearch: %w", err)
	}

	return es, nil
}

func (e *esClient) Client() *elasticsearch.Client {
	return e.client
}

func (e *esClient) Ping(ctx context.Context) (err error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping request failed: %w", err)
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping returned error: %s", res.String())
	}

	return nil
}
