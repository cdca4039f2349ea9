// Package services holds the HTTP adapters for the three external
// cross-reference services: the gene mention recognizer, the protein
// identifier normalizer, and the ontology membership resolver. Each
// adapter is a scoped resource: Open before a tagging pass, Close
// unconditionally afterwards. Calls on an unopened adapter fail fast.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
	"github.com/ashishbaghudana/relna/pkg/errors"
)

// ServiceConfig holds the connection parameters shared by all adapters.
type ServiceConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryMax     int           `mapstructure:"retry_max"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
}

func (c *ServiceConfig) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryMax == 0 {
		c.RetryMax = 3
	}
	if c.RetryWaitMin == 0 {
		c.RetryWaitMin = 500 * time.Millisecond
	}
	if c.RetryWaitMax == 0 {
		c.RetryWaitMax = 5 * time.Second
	}
}

// httpService is the plumbing shared by the three adapters. The name
// field shows up in errors and log lines so partial failures can be
// attributed to the service that caused them.
type httpService struct {
	name       string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	config     *ServiceConfig

	mu     sync.Mutex
	opened bool
}

func newHTTPService(name string, cfg *ServiceConfig, log logging.Logger) (*httpService, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeConfigError,
			fmt.Sprintf("%s: base_url is required", name))
	}
	cfg.applyDefaults()
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &httpService{
		name:       name,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.Named(name),
		config:     cfg,
	}, nil
}

// Open marks the adapter usable. It does not contact the server; the
// first request does.
func (s *httpService) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	s.opened = true
	s.logger.Debug("service opened", logging.String("base_url", s.baseURL))
	return nil
}

// Close releases idle connections. Safe to call more than once.
func (s *httpService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return nil
	}
	s.opened = false
	s.httpClient.CloseIdleConnections()
	s.logger.Debug("service closed")
	return nil
}

func (s *httpService) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return errors.New(errors.ErrCodeServiceNotOpen,
			fmt.Sprintf("%s: adapter used before Open", s.name))
	}
	return nil
}

// doJSON issues one request with retry and backoff, decoding the
// response body into result. 4xx responses are protocol errors and are
// not retried; transport failures and 5xx responses are.
func (s *httpService) doJSON(ctx context.Context, method, path string, body, result interface{}) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeServiceBadPayload,
				fmt.Sprintf("%s: failed to encode request", s.name))
		}
	}

	fullURL := s.baseURL + path
	var lastErr error
	for attempt := 0; attempt <= s.config.RetryMax; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.backoff(attempt)):
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), errors.ErrCodeExternalService,
					fmt.Sprintf("%s: request cancelled", s.name))
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService,
				fmt.Sprintf("%s: failed to build request", s.name))
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			s.logger.Warn("request failed",
				logging.String("url", fullURL),
				logging.Int("attempt", attempt),
				logging.Err(err))
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		s.logger.Debug("request completed",
			logging.String("method", method),
			logging.String("path", path),
			logging.Int("status", resp.StatusCode),
			logging.Duration("elapsed", time.Since(start)))
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%s returned HTTP %d", s.name, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return errors.New(errors.ErrCodeServiceProtocol,
				fmt.Sprintf("%s: HTTP %d for %s %s", s.name, resp.StatusCode, method, path))
		}

		if result == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return errors.Wrap(err, errors.ErrCodeServiceBadPayload,
				fmt.Sprintf("%s: failed to decode response", s.name))
		}
		return nil
	}

	return errors.Wrap(lastErr, errors.ErrCodeExternalService,
		fmt.Sprintf("%s: request failed after %d attempts", s.name, s.config.RetryMax+1))
}

func (s *httpService) backoff(attempt int) time.Duration {
	wait := s.config.RetryWaitMin * time.Duration(1<<uint(attempt-1))
	if wait > s.config.RetryWaitMax {
		wait = s.config.RetryWaitMax
	}
	jitter := time.Duration(rand.Int63n(int64(s.config.RetryWaitMin)))
	return wait + jitter
}
