package crm

import (
	"fmt"

	"github.com/lib/pq"
)

// EncodeTags serializes a tag list into the Postgres text-array literal the
// store expects: brace-delimited, double-quoted, comma-separated, e.g.
// {"A","B"}. An empty list encodes as {}. Embedded quotes and commas are
// escaped so the encoding round-trips.
func EncodeTags(tags []string) string {
	if len(tags) == 0 {
		return "{}"
	}
	v, err := pq.StringArray(tags).Value()
	if err != nil {
		// StringArray.Value cannot fail for a non-nil slice.
		return "{}"
	}
	return v.(string)
}

// DecodeTags parses the brace/quote array literal back into an ordered tag
// list, respecting commas inside quoted elements. {} decodes to nil.
func DecodeTags(encoded string) ([]string, error) {
	if encoded == "" || encoded == "{}" {
		return nil, nil
	}
	var tags pq.StringArray
	if err := tags.Scan(encoded); err != nil {
		return nil, fmt.Errorf("decode tags %q: %w", encoded, err)
	}
	return []string(tags), nil
}
