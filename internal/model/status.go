package model

import "strings"

// Status is the backend's record state enum. ACTIVE/DEACTIVE is the common
// pair; the extended values appear on specific resources (payouts use the
// PENDING/APPROVED/REJECTED triple, staff additionally SUSPENDED).
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusDeactive  Status = "DEACTIVE"
	StatusPending   Status = "PENDING"
	StatusSuspended Status = "SUSPENDED"
	StatusDeleted   Status = "DELETED"
	StatusRejected  Status = "REJECTED"
	StatusApproved  Status = "APPROVED"
)

var knownStatuses = []Status{
	StatusActive,
	StatusDeactive,
	StatusPending,
	StatusSuspended,
	StatusDeleted,
	StatusRejected,
	StatusApproved,
}

// ParseStatus normalizes a backend status string. Unknown values are kept
// verbatim (upper-cased) rather than rejected: the list view must render
// whatever the server says.
func ParseStatus(s string) Status {
	up := Status(strings.ToUpper(strings.TrimSpace(s)))
	return up
}

// ValidStatus reports whether s is one of the known enum values.
func ValidStatus(s Status) bool {
	for _, k := range knownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// Toggled returns the opposite of the ACTIVE/DEACTIVE pair. For any other
// status it returns ACTIVE (re-activation is the only sensible toggle).
func (s Status) Toggled() Status {
	if s == StatusActive {
		return StatusDeactive
	}
	return StatusActive
}
