package automod

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"canary-bot/internal/storage"

	"go.uber.org/zap"
)

var ErrInvalidPattern = errors.New("automod: invalid pattern")

var (
	DefaultKeywords = []string{"porn", "xxx", "hentai", "nsfw", "lewd", "gore"}
	DefaultPatterns = []string{
		`discorcl.gift`, `dlscord.gift`, `discord-app.com`,
		`discord-gifts.com`, `steamcommunily.com`,
	}
)

// Settings is the persisted rule set.
type Settings struct {
	Keywords []string `json:"nsfw_keywords"`
	Patterns []string `json:"phishing_patterns"`
}

type compiledPattern struct {
	source string
	re     *regexp.Regexp
}

// SettingsStore keeps the active rules in memory and writes every change
// through to its document.
type SettingsStore struct {
	doc    *storage.Document[Settings]
	logger *zap.Logger

	mu       sync.RWMutex
	current  Settings
	patterns []compiledPattern
}

func NewSettingsStore(ctx context.Context, backend storage.Backend, name string, logger *zap.Logger) (*SettingsStore, error) {
	s := &SettingsStore{
		doc:    storage.NewDocument(backend, name, func() Settings { return Settings{} }, logger),
		logger: logger,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory rules with the stored ones, writing the
// defaults first if nothing is stored.
func (s *SettingsStore) Reload(ctx context.Context) error {
	loaded, err := s.doc.LoadOrInit(ctx, defaultSettings)
	if err != nil {
		return fmt.Errorf("load automod settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(loaded)
	return nil
}

func (s *SettingsStore) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Settings{
		Keywords: append([]string(nil), s.current.Keywords...),
		Patterns: append([]string(nil), s.current.Patterns...),
	}
}

// AddKeyword returns false when the keyword is already present in any casing.
func (s *SettingsStore) AddKeyword(ctx context.Context, keyword string) (bool, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.current.Keywords, keyword) {
		return false, nil
	}
	next := s.copyCurrent()
	next.Keywords = append(next.Keywords, keyword)
	return true, s.commit(ctx, next)
}

func (s *SettingsStore) RemoveKeyword(ctx context.Context, keyword string) (bool, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))

	s.mu.Lock()
	defer s.mu.Unlock()
	if !contains(s.current.Keywords, keyword) {
		return false, nil
	}
	next := s.copyCurrent()
	next.Keywords = remove(next.Keywords, keyword)
	return true, s.commit(ctx, next)
}

func (s *SettingsStore) AddPattern(ctx context.Context, pattern string) (bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false, nil
	}
	if _, err := regexp.Compile("(?i)" + pattern); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.current.Patterns, pattern) {
		return false, nil
	}
	next := s.copyCurrent()
	next.Patterns = append(next.Patterns, pattern)
	return true, s.commit(ctx, next)
}

func (s *SettingsStore) RemovePattern(ctx context.Context, pattern string) (bool, error) {
	pattern = strings.TrimSpace(pattern)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !contains(s.current.Patterns, pattern) {
		return false, nil
	}
	next := s.copyCurrent()
	next.Patterns = remove(next.Patterns, pattern)
	return true, s.commit(ctx, next)
}

func (s *SettingsStore) rules() ([]string, []compiledPattern) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Keywords, s.patterns
}

func (s *SettingsStore) commit(ctx context.Context, next Settings) error {
	if err := s.doc.Save(ctx, next); err != nil {
		return fmt.Errorf("save automod settings: %w", err)
	}
	s.apply(next)
	return nil
}

func (s *SettingsStore) copyCurrent() Settings {
	return Settings{
		Keywords: append([]string(nil), s.current.Keywords...),
		Patterns: append([]string(nil), s.current.Patterns...),
	}
}

// apply must be called with mu held.
func (s *SettingsStore) apply(settings Settings) {
	keywords := make([]string, 0, len(settings.Keywords))
	for _, keyword := range settings.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" || contains(keywords, keyword) {
			continue
		}
		keywords = append(keywords, keyword)
	}

	patterns := make([]compiledPattern, 0, len(settings.Patterns))
	sources := make([]string, 0, len(settings.Patterns))
	for _, source := range settings.Patterns {
		if source == "" || contains(sources, source) {
			continue
		}
		re, err := regexp.Compile("(?i)" + source)
		if err != nil {
			s.logger.Warn("skipping invalid phishing pattern", zap.String("pattern", source), zap.Error(err))
			continue
		}
		sources = append(sources, source)
		patterns = append(patterns, compiledPattern{source: source, re: re})
	}

	s.current = Settings{Keywords: keywords, Patterns: sources}
	s.patterns = patterns
}

func defaultSettings() Settings {
	return Settings{
		Keywords: append([]string(nil), DefaultKeywords...),
		Patterns: append([]string(nil), DefaultPatterns...),
	}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func remove(values []string, value string) []string {
	out := values[:0]
	for _, v := range values {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// SortedKeywords is used for listing.
func (s Settings) SortedKeywords() []string {
	out := append([]string(nil), s.Keywords...)
	sort.Strings(out)
	return out
}
