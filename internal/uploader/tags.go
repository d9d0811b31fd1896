package uploader

import (
	"context"
	"fmt"
	"sort"

	"github.com/ignite/contact-sync/internal/pkg/logger"
	"github.com/ignite/contact-sync/internal/supabase"
)

const (
	// DefaultPageSize is the offset-pagination window for fetching stored
	// contacts. Independent of the insert batch size.
	DefaultPageSize = 1000

	// DefaultTagBatchSize is the number of tag rows per upsert call.
	DefaultTagBatchSize = 500
)

// TagCount is one (tag, count) pair from the derived frequency table.
type TagCount struct {
	Name  string
	Count int
}

// TagResult summarizes a tag-derivation run.
type TagResult struct {
	Contacts   int
	UniqueTags int
	Top        []TagCount // highest counts first
}

// TagPopulator re-derives the tag-frequency table for one tenant from the
// already-stored contacts. Each run recomputes counts from scratch; the
// (name, client_id) conflict key makes the upsert idempotent.
type TagPopulator struct {
	store     StoreClient
	clientID  string
	pageSize  int
	batchSize int
}

// NewTagPopulator creates a populator for one tenant.
func NewTagPopulator(store StoreClient, clientID string, pageSize, batchSize int) *TagPopulator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if batchSize <= 0 {
		batchSize = DefaultTagBatchSize
	}
	return &TagPopulator{store: store, clientID: clientID, pageSize: pageSize, batchSize: batchSize}
}

// Run paginates all stored contacts, counts tag occurrences, and writes the
// frequency table back in batches. Unlike the contact upload, a failed tag
// batch aborts the run: a partially rewritten frequency table is worse than
// a stale one.
func (p *TagPopulator) Run(ctx context.Context) (TagResult, error) {
	counts, contacts, err := p.countTags(ctx)
	if err != nil {
		return TagResult{}, err
	}

	rows := make([]supabase.Tag, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, supabase.Tag{Name: name, ClientID: p.clientID, ContactCount: count})
	}
	// Deterministic batch contents across runs.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	for i := 0; i < len(rows); i += p.batchSize {
		end := i + p.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := p.store.UpsertTags(ctx, rows[i:end]); err != nil {
			return TagResult{}, fmt.Errorf("upsert tag batch %d: %w", i/p.batchSize+1, err)
		}
		logger.Info("tag batch inserted", "batch", i/p.batchSize+1, "rows", end-i)
	}

	return TagResult{
		Contacts:   contacts,
		UniqueTags: len(rows),
		Top:        topCounts(counts, 10),
	}, nil
}

// countTags fetches every stored contact's tag list, advancing the offset
// until an empty page is returned. Null and empty tag entries are ignored.
func (p *TagPopulator) countTags(ctx context.Context) (map[string]int, int, error) {
	counts := make(map[string]int)
	contacts := 0

	for offset := 0; ; offset += p.pageSize {
		page, err := p.store.FetchContactTags(ctx, p.clientID, offset, p.pageSize)
		if err != nil {
			return nil, 0, fmt.Errorf("fetch contacts at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		contacts += len(page)
		for _, contact := range page {
			for _, tag := range contact.Tags {
				if tag != "" {
					counts[tag]++
				}
			}
		}
		logger.Info("fetched contacts page", "total", contacts)
	}

	return counts, contacts, nil
}

func topCounts(counts map[string]int, n int) []TagCount {
	top := make([]TagCount, 0, len(counts))
	for name, count := range counts {
		top = append(top, TagCount{Name: name, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}
