// Package uploader drives the hosted-store side of the reconciliation job:
// batched idempotent contact upserts with best-effort partial-completion
// accounting, and the decoupled tag-frequency derivation.
package uploader

import (
	"context"
	"time"

	"github.com/ignite/contact-sync/internal/crm"
	"github.com/ignite/contact-sync/internal/pkg/logger"
	"github.com/ignite/contact-sync/internal/supabase"
)

const (
	// DefaultBatchSize is the number of contacts per upsert call. The store
	// handles up to 1000 rows per request comfortably.
	DefaultBatchSize = 500

	// DefaultBatchDelay is the pause between batches, purely as rate-limit
	// courtesy toward the remote endpoint.
	DefaultBatchDelay = 100 * time.Millisecond

	// maxReportedFailures caps how many failing batches the summary lists.
	maxReportedFailures = 5

	// maxErrorLength truncates recorded error text for the summary.
	maxErrorLength = 100
)

// StoreClient is the store surface the uploader needs.
type StoreClient interface {
	UpsertContacts(ctx context.Context, contacts []supabase.Contact) error
	UpsertTags(ctx context.Context, tags []supabase.Tag) error
	FetchContactTags(ctx context.Context, clientID string, offset, limit int) ([]supabase.ContactTags, error)
}

// BatchFailure records one failed upsert call.
type BatchFailure struct {
	Batch   int    // 1-based batch number
	Records int    // records in the failed batch
	Err     string // truncated error text
}

// Result is the final accounting of an upload run.
type Result struct {
	Batches  int
	Uploaded int
	Failed   int
	Failures []BatchFailure
}

// ReportedFailures returns at most the first 5 failing batches for the
// human-readable summary; Failures holds the complete list.
func (r Result) ReportedFailures() []BatchFailure {
	if len(r.Failures) > maxReportedFailures {
		return r.Failures[:maxReportedFailures]
	}
	return r.Failures
}

// Uploader pushes merged records to the store in fixed-size batches.
type Uploader struct {
	store     StoreClient
	batchSize int
	delay     time.Duration
}

// NewUploader creates an uploader. batchSize <= 0 and delay < 0 fall back
// to the defaults.
func NewUploader(store StoreClient, batchSize int, delay time.Duration) *Uploader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if delay < 0 {
		delay = DefaultBatchDelay
	}
	return &Uploader{store: store, batchSize: batchSize, delay: delay}
}

// Run uploads every record in sequence. Each batch succeeds or fails
// independently: a failed batch is recorded and the run continues with the
// next one. Re-running on identical input is safe; the store's conflict key
// turns repeats into overwrites.
func (u *Uploader) Run(ctx context.Context, records []*crm.ContactRecord) Result {
	totalBatches := (len(records) + u.batchSize - 1) / u.batchSize
	result := Result{Batches: totalBatches}

	for i := 0; i < len(records); i += u.batchSize {
		end := i + u.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]
		batchNum := i/u.batchSize + 1

		if err := u.store.UpsertContacts(ctx, toContacts(batch)); err != nil {
			result.Failed += len(batch)
			result.Failures = append(result.Failures, BatchFailure{
				Batch:   batchNum,
				Records: len(batch),
				Err:     truncate(err.Error(), maxErrorLength),
			})
			logger.Error("batch upload failed",
				"batch", batchNum, "of", totalBatches, "error", err.Error())
		} else {
			result.Uploaded += len(batch)
			logger.Info("batch uploaded",
				"batch", batchNum, "of", totalBatches, "records", len(batch))
		}

		if u.delay > 0 && batchNum < totalBatches {
			time.Sleep(u.delay)
		}
	}

	return result
}

// toContacts converts records to the store's row shape. Empty optional
// fields become JSON null, matching the store's column defaults.
func toContacts(records []*crm.ContactRecord) []supabase.Contact {
	contacts := make([]supabase.Contact, 0, len(records))
	for _, r := range records {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		contacts = append(contacts, supabase.Contact{
			Email:        r.Email,
			FirstName:    nullable(r.FirstName),
			LastName:     nullable(r.LastName),
			Company:      nullable(r.Company),
			SourceCode:   nullable(r.SourceCode),
			Industry:     nullable(r.Industry),
			RecordType:   nullable(string(r.RecordType)),
			Tags:         tags,
			Unsubscribed: r.Unsubscribed,
			ClientID:     r.ClientID,
		})
	}
	return contacts
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
