// Package pokeapi implements the client for the public PokeAPI.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dukkea/pokeapi-go/internal/errors"
	"github.com/dukkea/pokeapi-go/internal/logging"
)

// Package-level logger specific to the pokeapi service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "pokeapi.log")
	initialLevel := slog.LevelDebug
	serviceLevelVar.Set(initialLevel)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "pokeapi", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize pokeapi file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "pokeapi")
		closeLogger = func() error { return nil }
	}
}

// Client provides methods for fetching resources from the upstream PokeAPI.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new upstream API client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultConfig().UserAgent
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultConfig().MaxRetries
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = DefaultConfig().RetryDelay
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}

	logger.Info("PokeAPI client initialized",
		"base_url", config.BaseURL,
		"timeout", config.Timeout,
		"max_retries", config.MaxRetries,
		"retry_delay", config.RetryDelay)

	return client, nil
}

// Close cleans up client resources.
func (c *Client) Close() {
	logger.Info("Closing PokeAPI client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing pokeapi logger: %v", err)
		}
	}
}

// FetchPokemon retrieves one pokemon by upstream identifier or name.
func (c *Client) FetchPokemon(ctx context.Context, identifier string) (*Pokemon, error) {
	url := fmt.Sprintf("%s/pokemon/%s", c.config.BaseURL, identifier)

	var pokemon Pokemon
	if err := c.fetchWithRetry(ctx, url, &pokemon); err != nil {
		return nil, err
	}
	return &pokemon, nil
}

// FetchAbility retrieves one ability by upstream identifier or name.
func (c *Client) FetchAbility(ctx context.Context, identifier string) (*Ability, error) {
	url := fmt.Sprintf("%s/ability/%s", c.config.BaseURL, identifier)

	var ability Ability
	if err := c.fetchWithRetry(ctx, url, &ability); err != nil {
		return nil, err
	}
	return &ability, nil
}

// FetchType retrieves one type by upstream identifier or name.
func (c *Client) FetchType(ctx context.Context, identifier string) (*Type, error) {
	url := fmt.Sprintf("%s/type/%s", c.config.BaseURL, identifier)

	var typ Type
	if err := c.fetchWithRetry(ctx, url, &typ); err != nil {
		return nil, err
	}
	return &typ, nil
}

// FetchPokemonPage retrieves one page of the upstream pokemon listing.
func (c *Client) FetchPokemonPage(ctx context.Context, offset, limit int) (*PokemonPage, error) {
	url := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", c.config.BaseURL, offset, limit)

	var page PokemonPage
	if err := c.fetchWithRetry(ctx, url, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// fetchWithRetry wraps doRequest with fixed-interval retry. Every failure
// short of context cancellation is retried, missing resources and decode
// failures included. The last error wins.
func (c *Client) fetchWithRetry(ctx context.Context, url string, result any) error {
	var lastErr error

	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		err := c.doRequest(ctx, url, result)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return lastErr
		}

		if attempt < c.config.MaxRetries-1 {
			logger.Warn("PokeAPI request failed, retrying",
				"attempt", attempt+1,
				"max_retries", c.config.MaxRetries,
				"delay", c.config.RetryDelay,
				"url", url,
				"error", err.Error())

			select {
			case <-time.After(c.config.RetryDelay):
			case <-ctx.Done():
				return lastErr
			}
		}
	}

	return lastErr
}

// doRequest executes one GET against the upstream API and decodes the JSON
// response into result.
func (c *Client) doRequest(ctx context.Context, url string, result any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("pokeapi").
			Build()
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("PokeAPI request failed",
			"error", err,
			"url", url)
		return errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("pokeapi").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Context("status_code", resp.StatusCode).
			Component("pokeapi").
			Build()
	}

	if resp.StatusCode == http.StatusNotFound {
		logger.Warn("PokeAPI resource not found",
			"url", url)
		return errors.Newf("resource not found upstream: %s", url).
			Category(errors.CategoryNotFound).
			Context("status_code", resp.StatusCode).
			Context("url", url).
			Component("pokeapi").
			Build()
	}

	if resp.StatusCode >= 400 {
		logger.Error("PokeAPI error response",
			"status_code", resp.StatusCode,
			"url", url)
		return errors.Newf("PokeAPI error (status %d)", resp.StatusCode).
			Category(errors.CategoryNetwork).
			Context("status_code", resp.StatusCode).
			Context("url", url).
			Component("pokeapi").
			Build()
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			responsePreview := string(bodyBytes)
			if len(responsePreview) > 500 {
				responsePreview = responsePreview[:500] + "..."
			}

			logger.Error("Failed to parse PokeAPI response",
				"error", err,
				"url", url,
				"response_size", len(bodyBytes),
				"response_preview", responsePreview)
			return errors.Newf("failed to parse response: %w", err).
				Category(errors.CategoryFileParsing).
				Context("url", url).
				Context("response_size", len(bodyBytes)).
				Component("pokeapi").
				Build()
		}
	}

	logger.Debug("PokeAPI request successful",
		"url", url,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_size", len(bodyBytes))

	return nil
}
