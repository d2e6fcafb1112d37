package session

import (
	"time"

	"gametable/internal/models"
)

// archiveEntry is one ended session held for idempotent late reads
type archiveEntry struct {
	session  *models.Session
	expireAt time.Time
}

// archive is a bounded, time-limited record of terminal sessions. It is not
// safe for concurrent use on its own; the owning repository's mutex guards it.
type archive struct {
	maxEntries int
	ttl        time.Duration

	entries map[string]*archiveEntry
	order   []string // insertion order, oldest first
}

func newArchive(maxEntries int, ttl time.Duration) *archive {
	return &archive{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]*archiveEntry),
	}
}

// add records a session, evicting the oldest entries past the cap
func (a *archive) add(s *models.Session, now time.Time) {
	if _, ok := a.entries[s.ID]; !ok {
		a.order = append(a.order, s.ID)
	}

	a.entries[s.ID] = &archiveEntry{
		session:  s,
		expireAt: now.Add(a.ttl),
	}

	for len(a.entries) > a.maxEntries && len(a.order) > 0 {
		oldest := a.order[0]
		a.order = a.order[1:]
		delete(a.entries, oldest)
	}
}

// get returns the stored session if present and not expired. Expiry is
// checked lazily here as well as in purge, so a read between sweeps never
// sees a stale entry.
func (a *archive) get(id string, now time.Time) *models.Session {
	entry, ok := a.entries[id]
	if !ok {
		return nil
	}

	if now.After(entry.expireAt) {
		return nil
	}

	return entry.session
}

// purge drops every entry past its retention window and returns the count
func (a *archive) purge(now time.Time) int {
	purged := 0
	kept := a.order[:0]

	for _, id := range a.order {
		entry, ok := a.entries[id]
		if !ok {
			continue
		}

		if now.After(entry.expireAt) {
			delete(a.entries, id)
			purged++
			continue
		}

		kept = append(kept, id)
	}

	a.order = kept
	return purged
}

func (a *archive) clear() {
	a.entries = make(map[string]*archiveEntry)
	a.order = nil
}
