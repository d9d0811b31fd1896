package crm

import (
	"io"
	"sort"
	"strings"

	"github.com/ignite/contact-sync/internal/source"
)

// Contacts export column names. The Leads export uses two variants:
// "Source code" (lowercase c) and "Company / Account".
const (
	colEmail         = "Email"
	colFirstName     = "First Name"
	colLastName      = "Last Name"
	colAccountName   = "Account Name"
	colSourceCode    = "Source Code"
	colSourceHistory = "Source Code History"
	colIndustry      = "Industry"
	colLeadSource    = "Source code"
	colLeadCompany   = "Company / Account"
)

// MergeStats is the accounting reported after a merge run.
type MergeStats struct {
	Contacts     int // distinct contact emails
	Leads        int // leads surviving as standalone records
	MergedLeads  int // lead rows absorbed into existing contacts
	Unsubscribed int // records with a suppressing status
}

// Merger builds the identity-deduplicated contact set from a Contacts pass
// followed by a Leads pass, attaching subscription status from the resolved
// status map. It is single-pass, single-threaded state for one run.
type Merger struct {
	statuses StatusMap
	contacts map[string]*ContactRecord
	leads    map[string]*ContactRecord
	merged   int
}

// NewMerger creates a merger that resolves unsubscribe status against the
// given map. An empty map is valid and leaves every record sendable.
func NewMerger(statuses StatusMap) *Merger {
	if statuses == nil {
		statuses = StatusMap{}
	}
	return &Merger{
		statuses: statuses,
		contacts: make(map[string]*ContactRecord),
		leads:    make(map[string]*ContactRecord),
	}
}

// LoadContacts consumes every row of a Contacts export.
func (m *Merger) LoadContacts(r *source.Reader) error {
	return eachRow(r, m.AddContact)
}

// LoadLeads consumes every row of a Leads export. Must run after the
// Contacts pass so lead-into-contact absorption can see all contacts.
func (m *Merger) LoadLeads(r *source.Reader) error {
	return eachRow(r, m.AddLead)
}

func eachRow(r *source.Reader, add func(source.Row)) error {
	for {
		row, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		add(row)
	}
}

// AddContact folds one Contacts row into the set. Rows with an empty email
// are skipped. When the export itself repeats an email, the later row's
// scalar fields win but tags are unioned across the duplicates.
func (m *Merger) AddContact(row source.Row) {
	email := NormalizeEmail(row.Get(colEmail))
	if email == "" {
		return
	}

	sourceCode := trimmed(row, colSourceCode)
	industry := trimmed(row, colIndustry)
	tags := buildTags(sourceCode, row.Get(colSourceHistory), industry)

	record := m.newRecord(email, RecordTypeContact, sourceCode, industry, tags)
	record.FirstName = trimmed(row, colFirstName)
	record.LastName = trimmed(row, colLastName)
	record.Company = trimmed(row, colAccountName)

	if existing, ok := m.contacts[email]; ok {
		record.Tags = existing.Tags
		record.AddTags(tags...)
	}
	m.contacts[email] = record
}

// AddLead folds one Leads row into the set. A lead whose email matches an
// existing contact contributes only its tags and produces no standalone
// record. A repeat lead email unions tags into the first-seen lead.
func (m *Merger) AddLead(row source.Row) {
	email := NormalizeEmail(row.Get(colEmail))
	if email == "" {
		return
	}

	sourceCode := trimmed(row, colLeadSource)
	industry := trimmed(row, colIndustry)
	tags := buildTags(sourceCode, row.Get(colSourceHistory), industry)

	if existing, ok := m.contacts[email]; ok {
		existing.AddTags(tags...)
		m.merged++
		return
	}
	if existing, ok := m.leads[email]; ok {
		existing.AddTags(tags...)
		return
	}

	record := m.newRecord(email, RecordTypeLead, sourceCode, industry, tags)
	record.FirstName = trimmed(row, colFirstName)
	record.LastName = trimmed(row, colLastName)
	record.Company = trimmed(row, colLeadCompany)
	m.leads[email] = record
}

func (m *Merger) newRecord(email string, rt RecordType, sourceCode, industry string, tags []string) *ContactRecord {
	status := m.statuses.Lookup(email)
	return &ContactRecord{
		Email:        email,
		SourceCode:   sourceCode,
		Industry:     industry,
		RecordType:   rt,
		Tags:         tags,
		MCStatus:     status,
		Unsubscribed: status.Suppressing(),
	}
}

// Records returns the full merged set (contacts plus surviving leads)
// sorted ascending by email for reproducible output.
func (m *Merger) Records() []*ContactRecord {
	records := make([]*ContactRecord, 0, len(m.contacts)+len(m.leads))
	for _, r := range m.contacts {
		records = append(records, r)
	}
	for _, r := range m.leads {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Email < records[j].Email })
	return records
}

// Stats returns the merge accounting for the end-of-run summary.
func (m *Merger) Stats() MergeStats {
	stats := MergeStats{
		Contacts:    len(m.contacts),
		Leads:       len(m.leads),
		MergedLeads: m.merged,
	}
	for _, r := range m.Records() {
		if r.Unsubscribed {
			stats.Unsubscribed++
		}
	}
	return stats
}

// buildTags assembles a row's tag list: the primary source code first, then
// the parsed history tags, then the industry label, deduplicated in order.
func buildTags(sourceCode, history, industry string) []string {
	tags := ParseSourceCodeHistory(history)
	if sourceCode != "" && !containsTag(tags, sourceCode) {
		tags = append([]string{sourceCode}, tags...)
	}
	if industry != "" && !containsTag(tags, industry) {
		tags = append(tags, industry)
	}
	return tags
}

func trimmed(row source.Row, col string) string {
	return strings.TrimSpace(row.Get(col))
}
