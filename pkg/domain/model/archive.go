package model

import "time"

// ArchiveStats reports the outcome of one archival cycle
type ArchiveStats struct {
	Scanned   int
	Archived  int
	Expired   int
	Deleted   int
	Conflicts int
	Errors    int
	StartedAt time.Time
	Duration  time.Duration
}

// Transitions returns the number of tier transitions performed in the cycle
func (s *ArchiveStats) Transitions() int {
	return s.Archived + s.Expired
}
