package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"canary-bot/internal/config"
	"canary-bot/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var (
	ErrGenerationFailed = errors.New("ai: content generation failed")
	ErrSafetyBlocked    = fmt.Errorf("%w: blocked by safety filters", ErrGenerationFailed)
	ErrDisabled         = fmt.Errorf("%w: no credentials configured", ErrGenerationFailed)
	ErrRateLimited      = errors.New("ai: too many requests")
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type userLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	enabled    bool
	logger     *zap.Logger
	clock      Clock

	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*userLimiter
}

func New(cfg config.AIConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	if cfg.AccessToken != "" {
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}),
		}
	}

	limit := rate.Inf
	if cfg.RequestsPerMin > 0 {
		limit = rate.Limit(cfg.RequestsPerMin / 60)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: httpClient,
		url:        strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Model + ":generateContent",
		apiKey:     cfg.APIKey,
		enabled:    cfg.Enabled && (cfg.APIKey != "" || cfg.AccessToken != ""),
		logger:     logger,
		clock:      realClock{},
		limit:      limit,
		burst:      burst,
		limiters:   make(map[string]*userLimiter),
	}
}

func (c *Client) WithClock(clock Clock) *Client {
	if clock != nil {
		c.clock = clock
	}
	return c
}

func (c *Client) Enabled() bool {
	return c.enabled
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// GenerateContent asks the model for an embed title and description about
// prompt. Every failure is reported as ErrGenerationFailed; safety blocks
// additionally match ErrSafetyBlocked.
func (c *Client) GenerateContent(ctx context.Context, userID, prompt string) (Content, error) {
	if !c.enabled {
		metrics.ObserveAI("disabled")
		return Content{}, ErrDisabled
	}
	if !c.allow(userID) {
		metrics.ObserveAI("throttled")
		return Content{}, ErrRateLimited
	}

	text, err := c.generate(ctx, structuredPrompt(prompt))
	switch {
	case errors.Is(err, ErrSafetyBlocked):
		metrics.ObserveAI("blocked")
		c.logger.Warn("ai prompt blocked", zap.String("user_id", userID))
		return Content{}, err
	case err != nil:
		metrics.ObserveAI("error")
		c.logger.Warn("ai generation failed", zap.String("user_id", userID), zap.Error(err))
		return Content{}, err
	}
	metrics.ObserveAI("ok")
	return ParseContent(text), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []requestContent{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrGenerationFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrGenerationFailed, err)
	}
	if len(decoded.Candidates) == 0 {
		return "", ErrSafetyBlocked
	}
	candidate := decoded.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason == "SAFETY" {
			return "", ErrSafetyBlocked
		}
		return "", fmt.Errorf("%w: empty candidate", ErrGenerationFailed)
	}
	text := candidate.Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrGenerationFailed)
	}
	return text, nil
}

func (c *Client) allow(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	entry, ok := c.limiters[userID]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.limiters[userID] = entry
	}
	entry.lastUsed = now
	return entry.limiter.AllowN(now, 1)
}

// Sweep drops per-user limiters unused for longer than idle and returns how
// many it removed. Idle is raised to the time a limiter needs to refill, so a
// dropped limiter is always indistinguishable from a fresh one.
func (c *Client) Sweep(idle time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit != rate.Inf && c.limit > 0 {
		if refill := time.Duration(float64(c.burst) / float64(c.limit) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	cutoff := c.clock.Now().Add(-idle)
	removed := 0
	for userID, entry := range c.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(c.limiters, userID)
			removed++
		}
	}
	return removed
}
