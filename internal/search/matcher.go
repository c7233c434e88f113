package search

import (
	"regexp"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Match is a byte range in the searched text.
type Match struct {
	Start int
	End   int
}

// Matcher finds case-insensitive literal matches. Compiled patterns are
// kept in an expiring cache so that backspacing to an earlier pattern and
// retyping it does not recompile.
type Matcher struct {
	cache *gocache.Cache
}

// NewMatcher returns a matcher with the default expiration.
func NewMatcher() *Matcher {
	return NewMatcherWithExpiration(DefaultExpiration, DefaultCleanupInterval)
}

// NewMatcherWithExpiration returns a matcher whose compiled patterns expire
// after ttl.
func NewMatcherWithExpiration(ttl, cleanupInterval time.Duration) *Matcher {
	return &Matcher{cache: gocache.New(ttl, cleanupInterval)}
}

func (m *Matcher) compile(pattern string) *regexp.Regexp {
	if v, found := m.cache.Get(pattern); found {
		if re, ok := v.(*regexp.Regexp); ok {
			return re
		}
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
	m.cache.SetDefault(pattern, re)
	return re
}

// Find returns the first match of pattern in text. An empty pattern
// never matches.
func (m *Matcher) Find(text, pattern string) (Match, bool) {
	if pattern == "" {
		return Match{}, false
	}
	loc := m.compile(pattern).FindStringIndex(text)
	if loc == nil {
		return Match{}, false
	}
	return Match{Start: loc[0], End: loc[1]}, true
}

// Cached returns the number of compiled patterns held.
func (m *Matcher) Cached() int {
	return m.cache.ItemCount()
}

// Flush drops every compiled pattern.
func (m *Matcher) Flush() {
	m.cache.Flush()
}
