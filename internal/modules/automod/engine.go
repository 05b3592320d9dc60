package automod

import (
	"context"
	"strings"
	"sync"
	"time"

	"canary-bot/internal/config"
	"canary-bot/internal/utils"

	"go.uber.org/zap"
)

type Kind int

const (
	KindPass Kind = iota
	KindKeyword
	KindPhishing
	KindSpam
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindPhishing:
		return "phishing"
	case KindSpam:
		return "spam"
	default:
		return "pass"
	}
}

// Verdict is the outcome of evaluating one message. Detail holds the
// matched keyword or pattern.
type Verdict struct {
	Kind   Kind
	Detail string
}

func (v Verdict) Violation() bool {
	return v.Kind != KindPass
}

// Message is the platform-independent view of an inbound chat message.
type Message struct {
	GuildID    string
	GuildName  string
	ChannelID  string
	MessageID  string
	AuthorID   string
	AuthorName string
	Content    string
	AuthorBot  bool
	IsMember   bool
	IsAdmin    bool
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Engine struct {
	settings   *SettingsStore
	logger     *zap.Logger
	clock      Clock
	spamLimit  int
	spamWindow time.Duration

	mu      sync.Mutex
	windows map[string]*utils.SlidingWindow
}

func NewEngine(settings *SettingsStore, cfg config.AutomodConfig, logger *zap.Logger) *Engine {
	return &Engine{
		settings:   settings,
		logger:     logger,
		clock:      realClock{},
		spamLimit:  cfg.SpamMessages,
		spamWindow: time.Duration(cfg.SpamWindowSeconds) * time.Second,
		windows:    make(map[string]*utils.SlidingWindow),
	}
}

func (e *Engine) WithClock(clock Clock) *Engine {
	if clock != nil {
		e.clock = clock
	}
	return e
}

// Evaluate checks content before volume: keywords, then phishing patterns,
// then the spam window. The first match wins.
func (e *Engine) Evaluate(ctx context.Context, msg Message) Verdict {
	_ = ctx
	if msg.AuthorBot || !msg.IsMember || msg.IsAdmin || msg.GuildID == "" {
		return Verdict{Kind: KindPass}
	}

	keywords, patterns := e.settings.rules()
	lower := strings.ToLower(msg.Content)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return Verdict{Kind: KindKeyword, Detail: keyword}
		}
	}

	if source, ok := matchPattern(msg.Content, patterns); ok {
		return Verdict{Kind: KindPhishing, Detail: source}
	}

	if count, exceeded := e.window(msg.AuthorID).AddAndResetAbove(e.clock.Now(), e.spamLimit); exceeded {
		e.logger.Debug("spam window exceeded", zap.String("user_id", msg.AuthorID), zap.Int("count", count))
		return Verdict{Kind: KindSpam}
	}
	return Verdict{Kind: KindPass}
}

// Sweep drops spam windows with no recent hits and returns how many it removed.
func (e *Engine) Sweep() int {
	now := e.clock.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	for userID, window := range e.windows {
		if window.Count(now) == 0 {
			delete(e.windows, userID)
			removed++
		}
	}
	return removed
}

func (e *Engine) window(userID string) *utils.SlidingWindow {
	e.mu.Lock()
	defer e.mu.Unlock()
	window := e.windows[userID]
	if window == nil {
		window = utils.NewSlidingWindow(e.spamWindow)
		e.windows[userID] = window
	}
	return window
}

// matchPattern tries the raw text first, then every URL in it after
// normalisation, so lookalike hosts still hit plain patterns.
func matchPattern(content string, patterns []compiledPattern) (string, bool) {
	for _, pattern := range patterns {
		if pattern.re.MatchString(content) {
			return pattern.source, true
		}
	}

	for _, raw := range utils.ExtractURLs(content) {
		normalized, _, err := utils.NormalizeURL(raw)
		if err != nil {
			continue
		}
		for _, pattern := range patterns {
			if pattern.re.MatchString(normalized) {
				return pattern.source, true
			}
		}
	}
	return "", false
}
