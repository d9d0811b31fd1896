package crm

import (
	"regexp"
	"strings"
)

// dateSuffixPattern matches the " @ YYYY-MM-DD" suffix Salesforce appends to
// each source-code history entry, together with anything after the date.
var dateSuffixPattern = regexp.MustCompile(`\s*@\s*\d{4}-\d{2}-\d{2}.*$`)

// ParseSourceCodeHistory splits a free-text Source Code History field into an
// ordered, deduplicated list of tags.
//
// Input:  "CIP2021 @ 2021-10-28\nWeb Order @ 2020-12-09\nSample Request"
// Output: ["CIP2021", "Web Order", "Sample Request"]
//
// Each line is stripped of its date suffix and surrounding whitespace. Lines
// that are empty, or reduce to empty after stripping, are discarded. Later
// duplicates of an already-seen tag are dropped, so parsing the joined output
// again yields the same list.
func ParseSourceCodeHistory(history string) []string {
	if history == "" {
		return nil
	}

	var tags []string
	for _, line := range strings.Split(strings.TrimSpace(history), "\n") {
		tag := dateSuffixPattern.ReplaceAllString(strings.TrimSpace(line), "")
		tag = strings.TrimSpace(tag)
		if tag != "" && !containsTag(tags, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}
