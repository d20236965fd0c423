package state

import "github.com/shiftlab/deploysim/internal/domain"

const defaultLogCapacity = 50

// activityLog is a capacity-bounded, time-ordered activity buffer. The
// oldest entries are dropped from the front once the capacity is exceeded.
// Callers must hold the cluster lock.
type activityLog struct {
	capacity int
	entries  []domain.LogEntry
}

func newActivityLog(capacity int) *activityLog {
	if capacity <= 0 {
		capacity = defaultLogCapacity
	}
	return &activityLog{capacity: capacity}
}

func (l *activityLog) append(e domain.LogEntry) {
	l.entries = append(l.entries, e)
	if overflow := len(l.entries) - l.capacity; overflow > 0 {
		l.entries = append(l.entries[:0], l.entries[overflow:]...)
	}
}

func (l *activityLog) snapshot() []domain.LogEntry {
	out := make([]domain.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
