// Package crm contains the record-merge and tag-reconciliation core:
// normalizing Salesforce Contact and Lead exports into a single
// identity-deduplicated contact set, folding source-code history into
// ordered tag lists, and resolving unsubscribe status from a Marketing
// Cloud export with a worst-status-wins rule.
package crm

import "strings"

// RecordType marks which CRM export a record originated from. It is fixed
// at creation and survives a lead being merged into a contact.
type RecordType string

const (
	RecordTypeContact RecordType = "contact"
	RecordTypeLead    RecordType = "lead"
)

// ContactRecord is the unified contact shape produced by the merger.
// Email is the identity key, always normalized. Tags is an ordered,
// deduplicated list of acquisition-history labels plus the industry label.
type ContactRecord struct {
	Email      string
	FirstName  string
	LastName   string
	Company    string
	SourceCode string
	Industry   string
	RecordType RecordType
	Tags       []string

	// Unsubscribed is derived from MCStatus and is true exactly when the
	// status is suppressing (Unsubscribed or Held).
	Unsubscribed bool
	MCStatus     Status

	// ClientID scopes the record to one tenant in the shared store. It is
	// stamped at export-write time, not parsed from source data.
	ClientID string
}

// NormalizeEmail trims and lowercases an email address so that identity
// matching across exports is case-insensitive. Normalization is idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AddTags appends each tag that the record does not already carry, by exact
// string match, preserving first-occurrence order. Empty tags are dropped.
func (r *ContactRecord) AddTags(tags ...string) {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if !containsTag(r.Tags, tag) {
			r.Tags = append(r.Tags, tag)
		}
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
