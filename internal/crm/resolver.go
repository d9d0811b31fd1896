package crm

import (
	"io"

	"github.com/ignite/contact-sync/internal/source"
)

// Subscription-status export column names.
const (
	colStatusEmail = "Email Address"
	colStatus      = "Status"
)

// LoadStatuses builds the worst-status-wins map from a Marketing Cloud
// subscriber export. The caller decides what to do when the export cannot
// be opened at all; by contract that is non-fatal and degrades to an empty
// map, since subscription data is supplementary.
func LoadStatuses(r *source.Reader) (StatusMap, error) {
	statuses := StatusMap{}
	for {
		row, err := r.Next()
		if err == io.EOF {
			return statuses, nil
		}
		if err != nil {
			return nil, err
		}
		statuses.Observe(row.Get(colStatusEmail), row.Get(colStatus))
	}
}
