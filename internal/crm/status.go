package crm

import "strings"

// Status is a Marketing Cloud subscription status. The enumeration is
// open-ended; only Unsubscribed and Held are distinguished as suppressing,
// everything else (including an absent status) is sendable.
type Status string

const (
	StatusUnsubscribed Status = "Unsubscribed"
	StatusHeld         Status = "Held"
	StatusUnknown      Status = "Unknown"
)

// Suppressing reports whether the status forces unsubscribed = true.
func (s Status) Suppressing() bool {
	return s == StatusUnsubscribed || s == StatusHeld
}

// WorseStatus folds two observations of the same email into the worse one.
// The ordering is: {Unsubscribed, Held} > any other status > absent (empty).
// The fold is a pure reduction over that lattice, so feeding the same rows
// in any order yields the same result.
func WorseStatus(current, incoming Status) Status {
	if current.Suppressing() {
		return current
	}
	if incoming.Suppressing() || current == "" {
		return incoming
	}
	return current
}

// StatusMap holds the worst-observed subscription status per normalized
// email. It is built once by the status resolver and read-only thereafter.
type StatusMap map[string]Status

// Observe folds one export row into the map. Rows with an empty email are
// skipped. Once an email is marked with a suppressing status, later rows
// cannot downgrade it.
func (m StatusMap) Observe(email, status string) {
	email = NormalizeEmail(email)
	if email == "" {
		return
	}
	m[email] = WorseStatus(m[email], Status(strings.TrimSpace(status)))
}

// Lookup returns the resolved status for an email, or Unknown when the
// email was never observed. Lookup never fails: an absent or empty status
// export simply makes every contact sendable.
func (m StatusMap) Lookup(email string) Status {
	if status, ok := m[NormalizeEmail(email)]; ok && status != "" {
		return status
	}
	return StatusUnknown
}

// Counts tallies how many emails resolved to each status value, for the
// summary printed after loading the export.
func (m StatusMap) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, status := range m {
		counts[status]++
	}
	return counts
}
