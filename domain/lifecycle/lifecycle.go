package lifecycle

import (
	"fmt"
	"time"
)

type ProjectStatus string

const (
	StatusPending  = ProjectStatus("Pending")
	StatusActive   = ProjectStatus("Active")
	StatusExpired  = ProjectStatus("Expired")
	StatusInactive = ProjectStatus("Inactive")
)

// ManualStatusInactive is the only manual override value. It beats all
// date logic when set.
const ManualStatusInactive = "inactive"

var projectDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type ErrUnparsableDate struct {
	Value string
}

func (e *ErrUnparsableDate) Error() string {
	return fmt.Sprintf("unparsable project date %q", e.Value)
}

// ParseProjectDate parses the date strings accepted for project start/end:
// RFC3339 (a trailing "Z" is fine), a zone-less datetime, or a bare date.
func ParseProjectDate(value string) (time.Time, error) {
	for _, layout := range projectDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ErrUnparsableDate{Value: value}
}

// Resolve derives the execution status of a contract from its date range
// and the optional manual override, in priority order:
//
//  1. manual "inactive" always wins, whatever the dates say;
//  2. with both dates present and parseable: past the end is Expired, at
//     or past the start is Active;
//  3. everything else is Pending.
//
// A malformed date never fails the surrounding request: the typed parse
// error degrades the date to absent, which resolves to Pending.
func Resolve(now time.Time, startDate, endDate, manualStatus string) ProjectStatus {
	if manualStatus == ManualStatusInactive {
		return StatusInactive
	}

	if startDate != "" && endDate != "" {
		start, startErr := ParseProjectDate(startDate)
		end, endErr := ParseProjectDate(endDate)
		if startErr == nil && endErr == nil {
			if now.After(end) {
				return StatusExpired
			}
			if !now.Before(start) {
				return StatusActive
			}
		}
	}

	return StatusPending
}
