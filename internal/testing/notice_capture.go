package testing

import (
	"regexp"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// NoticeCapture collects PostgreSQL NOTICE messages from every session it is
// attached to. Thread-safe for concurrent use.
type NoticeCapture struct {
	raw []string
	mu  sync.Mutex
}

// NewNoticeCapture creates a new NoticeCapture instance.
func NewNoticeCapture() *NoticeCapture {
	return &NoticeCapture{raw: make([]string, 0)}
}

// Handler returns a function suitable for pgx's OnNotice callback.
func (nc *NoticeCapture) Handler() func(*pgconn.PgConn, *pgconn.Notice) {
	return func(_ *pgconn.PgConn, n *pgconn.Notice) {
		if n == nil {
			return
		}

		nc.mu.Lock()
		defer nc.mu.Unlock()

		nc.raw = append(nc.raw, n.Message)
	}
}

// RawNotices returns all raw NOTICE messages received.
func (nc *NoticeCapture) RawNotices() []string {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	result := make([]string, len(nc.raw))
	copy(result, nc.raw)
	return result
}

// Matching returns the first capture group of every notice matching pattern,
// in arrival order. Notices without a match are skipped.
func (nc *NoticeCapture) Matching(pattern *regexp.Regexp) []string {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	var result []string
	for _, msg := range nc.raw {
		match := pattern.FindStringSubmatch(msg)
		if len(match) < 2 {
			continue
		}
		result = append(result, match[1])
	}
	return result
}

// Distinct returns the number of distinct values Matching yields.
func (nc *NoticeCapture) Distinct(pattern *regexp.Regexp) int {
	seen := make(map[string]struct{})
	for _, v := range nc.Matching(pattern) {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Reset clears all captured notices.
func (nc *NoticeCapture) Reset() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	nc.raw = make([]string, 0)
}

// Count returns the number of captured notices.
func (nc *NoticeCapture) Count() int {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	return len(nc.raw)
}
