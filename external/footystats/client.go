package footystats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/league-tracker/internal/platform/logging"
	"github.com/riskibarqy/league-tracker/internal/platform/resilience"
	"github.com/riskibarqy/league-tracker/internal/usecase"
)

const (
	defaultBaseURL        = "https://api.football-data-api.com"
	defaultRequestsPerSec = 2
	defaultMaxRetries     = 2
	defaultBackoffBase    = time.Second
	maxRetryAfter         = 2 * time.Minute
	maxPagesPerEndpoint   = 50
	maxResponseBytes      = 16 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`key=[^&\s"']+`)
var errFootyStatsTransient = crerr.New("footystats transient failure")

// IsTransient reports whether err comes from provider flakiness that the
// retry budget already absorbed, as opposed to a hard rejection.
func IsTransient(err error) bool {
	return crerr.Is(err, errFootyStatsTransient)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RequestsPerSec float64
	BackoffBase    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the FootyStats API. Every request passes the shared
// pacing limiter first so concurrent collectors never exceed the
// provider's per-second allowance.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	backoffBase    time.Duration
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight

	historyMu sync.Mutex
	history   []time.Time
}

// Stats is a point-in-time view of recent request activity.
type Stats struct {
	RequestsLastMinute int    `json:"requestsLastMinute"`
	CircuitState       string `json:"circuitState"`
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

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	if cfg.MaxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	perSec := cfg.RequestsPerSec
	if perSec <= 0 {
		perSec = defaultRequestsPerSec
	}

	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxRetries,
		backoffBase:    backoffBase,
		limiter:        rate.NewLimiter(rate.Limit(perSec), 1),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchLeagues returns the account's chosen leagues. Unlike the paged
// season endpoints this call propagates transient exhaustion, because an
// empty league list would be indistinguishable from a misconfigured key.
func (c *Client) FetchLeagues(ctx context.Context) ([]usecase.ExternalLeague, error) {
	query := map[string]string{"chosen_leagues_only": "true"}

	var envelope leagueListEnvelope
	if err := c.doJSON(ctx, "/league-list", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch league list: %w", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("fetch league list: provider reported failure")
	}

	out := make([]usecase.ExternalLeague, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		mapped := mapLeague(item)
		if mapped.Name == "" || len(mapped.Seasons) == 0 {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) FetchLeagueTeams(ctx context.Context, seasonID int64) ([]usecase.ExternalTeam, error) {
	if seasonID <= 0 {
		return nil, fmt.Errorf("%w: season id must be greater than zero", usecase.ErrInvalidInput)
	}

	out := make([]usecase.ExternalTeam, 0, 32)
	err := c.fetchPaged(ctx, "/league-teams", map[string]string{
		"season_id": strconv.FormatInt(seasonID, 10),
		"include":   "stats",
	}, func(raw []byte) (pager, int, error) {
		var envelope teamsEnvelope
		if err := sonic.Unmarshal(raw, &envelope); err != nil {
			return pager{}, 0, fmt.Errorf("decode league teams page: %w", err)
		}
		if !envelope.Success {
			return pager{}, 0, fmt.Errorf("provider reported failure for league teams")
		}
		for _, item := range envelope.Data {
			out = append(out, mapTeam(item))
		}
		return envelope.Pager, len(envelope.Data), nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch league teams season_id=%d: %w", seasonID, err)
	}
	return out, nil
}

func (c *Client) FetchLeagueMatches(ctx context.Context, seasonID int64) ([]usecase.ExternalMatch, error) {
	if seasonID <= 0 {
		return nil, fmt.Errorf("%w: season id must be greater than zero", usecase.ErrInvalidInput)
	}

	out := make([]usecase.ExternalMatch, 0, 256)
	err := c.fetchPaged(ctx, "/league-matches", map[string]string{
		"season_id": strconv.FormatInt(seasonID, 10),
	}, func(raw []byte) (pager, int, error) {
		var envelope matchesEnvelope
		if err := sonic.Unmarshal(raw, &envelope); err != nil {
			return pager{}, 0, fmt.Errorf("decode league matches page: %w", err)
		}
		if !envelope.Success {
			return pager{}, 0, fmt.Errorf("provider reported failure for league matches")
		}
		for _, item := range envelope.Data {
			out = append(out, mapMatch(item))
		}
		return envelope.Pager, len(envelope.Data), nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch league matches season_id=%d: %w", seasonID, err)
	}
	return out, nil
}

func (c *Client) FetchLeaguePlayers(ctx context.Context, seasonID int64) ([]usecase.ExternalPlayer, error) {
	if seasonID <= 0 {
		return nil, fmt.Errorf("%w: season id must be greater than zero", usecase.ErrInvalidInput)
	}

	out := make([]usecase.ExternalPlayer, 0, 512)
	err := c.fetchPaged(ctx, "/league-players", map[string]string{
		"season_id": strconv.FormatInt(seasonID, 10),
		"include":   "stats",
	}, func(raw []byte) (pager, int, error) {
		var envelope playersEnvelope
		if err := sonic.Unmarshal(raw, &envelope); err != nil {
			return pager{}, 0, fmt.Errorf("decode league players page: %w", err)
		}
		if !envelope.Success {
			return pager{}, 0, fmt.Errorf("provider reported failure for league players")
		}
		for _, item := range envelope.Data {
			out = append(out, mapPlayer(item))
		}
		return envelope.Pager, len(envelope.Data), nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch league players season_id=%d: %w", seasonID, err)
	}
	return out, nil
}

// fetchPaged walks the pager until current_page reaches max_page or a
// page comes back empty, whichever is first; pagers have been observed
// to overstate max_page, so an empty page is end-of-data. A transient
// failure mid-walk degrades to the pages collected so far; a hard
// provider rejection aborts the whole fetch.
func (c *Client) fetchPaged(ctx context.Context, path string, query map[string]string, consume func(raw []byte) (pager, int, error)) error {
	for page := 1; page <= maxPagesPerEndpoint; page++ {
		pageQuery := make(map[string]string, len(query)+1)
		for key, value := range query {
			pageQuery[key] = value
		}
		pageQuery["page"] = strconv.Itoa(page)

		raw, err := c.doRaw(ctx, path, pageQuery)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if IsTransient(err) || crerr.Is(err, usecase.ErrDependencyUnavailable) {
				c.logger.WarnContext(ctx, "provider page fetch degraded, keeping collected rows",
					"path", path,
					"page", page,
					"error", err,
				)
				return nil
			}
			return err
		}

		pageInfo, count, err := consume(raw)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if pageInfo.MaxPage <= 0 || pageInfo.CurrentPage >= pageInfo.MaxPage {
			return nil
		}
	}

	c.logger.WarnContext(ctx, "provider pagination exceeded page cap", "path", path, "cap", maxPagesPerEndpoint)
	return nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	raw, err := c.doRaw(ctx, path, query)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "footystats circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("key", c.apiKey)

	fullURL := c.baseURL + path + "?" + values.Encode()

	out, err, _ := c.flight.Do(path+"?"+values.Encode(), func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && IsTransient(reqErr) {
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
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		c.recordRequest()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		retryAfter := time.Duration(0)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errFootyStatsTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFootyStatsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFootyStatsTransient, resp.StatusCode, abbreviateBody(raw))
				if resp.StatusCode == http.StatusTooManyRequests {
					retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
				}
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}

		backoff := c.backoffBase << attempt
		if retryAfter > backoff {
			backoff = retryAfter
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: provider request failed", errFootyStatsTransient)
	}
	c.logger.WarnContext(ctx, "footystats request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) recordRequest() {
	now := time.Now()
	cutoff := now.Add(-time.Minute)

	c.historyMu.Lock()
	defer c.historyMu.Unlock()
	kept := c.history[:0]
	for _, at := range c.history {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	c.history = append(kept, now)
}

// RequestStats reports the rolling one-minute request count and breaker
// state for the status endpoint.
func (c *Client) RequestStats() Stats {
	cutoff := time.Now().Add(-time.Minute)

	c.historyMu.Lock()
	count := 0
	for _, at := range c.history {
		if at.After(cutoff) {
			count++
		}
	}
	c.historyMu.Unlock()

	return Stats{
		RequestsLastMinute: count,
		CircuitState:       string(c.breaker.State()),
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms, capped
// so a misbehaving provider cannot stall a worker for long.
func parseRetryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0
		}
		return capDuration(time.Duration(seconds) * time.Second)
	}
	if at, err := http.ParseTime(raw); err == nil {
		delta := time.Until(at)
		if delta <= 0 {
			return 0
		}
		return capDuration(delta)
	}
	return 0
}

func capDuration(d time.Duration) time.Duration {
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

func sanitizeSensitiveText(value, key string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if key != "" {
		value = strings.ReplaceAll(value, key, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "key=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiKeyParamRegex.ReplaceAllString(fullURL, "key=REDACTED")
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return body
}
