// Package theshow fetches per-participant game history from the remote
// sports-statistics API.
package theshow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/platform/logging"
	"github.com/showleague/standings/internal/platform/resilience"
)

const (
	defaultBaseURL   = "https://mlb25.theshow.com/apis"
	defaultPlatform  = "psn"
	historyPath      = "/game_history.json"
	maxResponseBytes = 6 << 20
	retryBackoff     = 400 * time.Millisecond
)

var errTransient = crerr.New("game history transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Platform       string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the game-history fetch client. One call retrieves one page for
// one participant identity, with bounded retries and a circuit breaker in
// front of the upstream.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	platform       string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	platform := strings.TrimSpace(cfg.Platform)
	if platform == "" {
		platform = defaultPlatform
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		platform:       platform,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type historyEnvelope struct {
	GameHistory []apiRecord `json:"game_history"`
}

type apiRecord struct {
	ID                 flexScalar `json:"id"`
	GameMode           string     `json:"game_mode"`
	DisplayDate        string     `json:"display_date"`
	HomeName           string     `json:"home_name"`
	AwayName           string     `json:"away_name"`
	HomeFullName       string     `json:"home_full_name"`
	AwayFullName       string     `json:"away_full_name"`
	HomeDisplayResult  string     `json:"home_display_result"`
	AwayDisplayResult  string     `json:"away_display_result"`
	HomeRuns           flexScalar `json:"home_runs"`
	AwayRuns           flexScalar `json:"away_runs"`
	DisplayPitcherInfo string     `json:"display_pitcher_info"`
}

// flexScalar decodes a JSON string, number or null into its textual form.
// The provider is not consistent about quoting ids and run counts, and one
// unexpected quote must not discard the whole page.
type flexScalar string

func (s *flexScalar) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "" || raw == "null":
		*s = ""
	case raw[0] == '"':
		var str string
		if err := sonic.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexScalar(str)
	default:
		*s = flexScalar(raw)
	}
	return nil
}

// GameHistory fetches one page of history for one identity. A payload
// without a game_history field decodes as an empty page; transport errors,
// timeouts and retryable statuses are retried with a fixed short backoff
// before the error is surfaced.
func (c *Client) GameHistory(ctx context.Context, username string, page int) ([]game.Record, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "game history circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: history provider is temporarily unavailable", err)
		}
	}

	values := url.Values{}
	values.Set("username", username)
	values.Set("platform", c.platform)
	values.Set("page", strconv.Itoa(page))
	fullURL := c.baseURL + historyPath + "?" + values.Encode()

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	var envelope historyEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode game history payload: %w", err)
	}

	records := make([]game.Record, 0, len(envelope.GameHistory))
	for _, item := range envelope.GameHistory {
		records = append(records, mapRecord(item))
	}
	return records, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "game history request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func mapRecord(item apiRecord) game.Record {
	return game.Record{
		ID:          string(item.ID),
		GameMode:    item.GameMode,
		DisplayDate: item.DisplayDate,
		HomeName:    item.HomeName,
		AwayName:    item.AwayName,
		HomeTeam:    item.HomeFullName,
		AwayTeam:    item.AwayFullName,
		HomeResult:  item.HomeDisplayResult,
		AwayResult:  item.AwayDisplayResult,
		HomeRuns:    string(item.HomeRuns),
		AwayRuns:    string(item.AwayRuns),
		PitcherInfo: item.DisplayPitcherInfo,
	}
}
