package usecase

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eslsoft/drillnet/internal/entity"
)

// CooldownCache holds session-scoped cooldown records. It is an explicit
// object owned by the tracker (not package state) so tests can reset it and
// sessions cannot interfere with each other.
type CooldownCache struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*entity.CooldownRecord
}

// NewCooldownCache creates an empty cooldown cache.
func NewCooldownCache() *CooldownCache {
	return &CooldownCache{sessions: make(map[string]map[string]*entity.CooldownRecord)}
}

// HasSession reports whether any records are cached for the session.
func (c *CooldownCache) HasSession(sessionID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions[sessionID]) > 0
}

// Put upserts a record under its session. The record is stored keyed by the
// normalized word token.
func (c *CooldownCache) Put(sessionID string, record *entity.CooldownRecord) {
	if record == nil || sessionID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	words, ok := c.sessions[sessionID]
	if !ok {
		words = make(map[string]*entity.CooldownRecord)
		c.sessions[sessionID] = words
	}
	words[entity.NormalizeWordToken(record.Word)] = record
}

// Records returns a snapshot of the session's cooldown records.
func (c *CooldownCache) Records(sessionID string) map[string]*entity.CooldownRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	words := c.sessions[sessionID]
	out := make(map[string]*entity.CooldownRecord, len(words))
	for k, v := range words {
		copy := *v
		out[k] = &copy
	}
	return out
}

// Prune drops records whose cooldown expired more than horizon ago. Durable
// history is unaffected; the cache is always rebuildable.
func (c *CooldownCache) Prune(now time.Time, horizon time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sessionID, words := range c.sessions {
		for word, record := range words {
			if record.Expired(now, horizon) {
				delete(words, word)
			}
		}
		if len(words) == 0 {
			delete(c.sessions, sessionID)
		}
	}
}

// ClearSession removes all cached records tagged with the session.
func (c *CooldownCache) ClearSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
}

// preloadEntry is a staged exercise with its expiry instant.
type preloadEntry struct {
	result    *entity.GenerationResult
	expiresAt time.Time
}

// PreloadCache stages pre-generated exercises keyed by
// userID_language_difficulty_sessionID, each entry carrying a fixed TTL.
type PreloadCache struct {
	mu      sync.Mutex
	entries map[string][]preloadEntry
	ttl     time.Duration
}

// NewPreloadCache creates a preload cache with the given entry TTL.
func NewPreloadCache(ttl time.Duration) *PreloadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PreloadCache{entries: make(map[string][]preloadEntry), ttl: ttl}
}

// PreloadKey builds the cache key for a generation request.
func PreloadKey(userID int64, language entity.Language, difficulty entity.Difficulty, sessionID string) string {
	return fmt.Sprintf("%d_%s_%s_%s", userID, language.CodeOrDefault(), difficulty, sessionID)
}

// Push stages a result under the key.
func (c *PreloadCache) Push(key string, result *entity.GenerationResult, now time.Time) {
	if result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append(c.entries[key], preloadEntry{result: result, expiresAt: now.Add(c.ttl)})
}

// Pop returns the oldest unexpired entry for the key, or false when none is left.
func (c *PreloadCache) Pop(key string, now time.Time) (*entity.GenerationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	queue := c.entries[key]
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		if head.expiresAt.After(now) {
			c.entries[key] = queue
			return head.result, true
		}
	}
	delete(c.entries, key)
	return nil, false
}

// Len reports how many unexpired entries are staged for the key.
func (c *PreloadCache) Len(key string, now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, e := range c.entries[key] {
		if e.expiresAt.After(now) {
			count++
		}
	}
	return count
}

// ClearSession drops staged entries for the session across all keys.
func (c *PreloadCache) ClearSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasSuffix(key, "_"+sessionID) {
			delete(c.entries, key)
		}
	}
}

// Clear drops everything.
func (c *PreloadCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]preloadEntry)
}
