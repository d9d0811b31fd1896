// Package source reads row-oriented CRM and marketing-platform exports.
// It provides header-keyed row access with default-empty-string semantics
// for missing columns, Latin-1-tolerant decoding for vendor exports, and
// transparent fetching of local or s3:// file paths.
package source

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Row is a single export row keyed by column header.
type Row struct {
	header map[string]int
	fields []string
}

// Get returns the value of the named column, or "" when the column is
// missing from the header or the row is short. Malformed rows are never
// fatal; they degrade to empty fields.
func (r Row) Get(name string) string {
	idx, ok := r.header[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

// Reader iterates a CSV export, exposing each record as a header-keyed Row.
type Reader struct {
	cr     *csv.Reader
	header map[string]int
	rc     io.Closer
}

// NewReader wraps a UTF-8 CSV stream and consumes its header row.
func NewReader(r io.Reader) (*Reader, error) {
	return newReader(r, nil)
}

// NewLatin1Reader wraps a CSV stream that may contain non-UTF8 byte
// sequences, decoding it as ISO 8859-1. Salesforce and Marketing Cloud
// exports routinely carry Latin-1 bytes in name and company fields.
func NewLatin1Reader(r io.Reader) (*Reader, error) {
	return newReader(newLatin1(r), nil)
}

func newLatin1(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
}

func newReader(r io.Reader, rc io.Closer) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // exports are ragged; Row.Get tolerates short rows
	cr.LazyQuotes = true

	headerRow, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("export has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}

	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		// Duplicate columns keep the first occurrence (Salesforce reports
		// can repeat Industry).
		if _, seen := header[name]; !seen {
			header[name] = i
		}
	}

	return &Reader{cr: cr, header: header, rc: rc}, nil
}

// Next returns the next row, or io.EOF when the export is exhausted.
func (r *Reader) Next() (Row, error) {
	fields, err := r.cr.Read()
	if err != nil {
		return Row{}, err
	}
	return Row{header: r.header, fields: fields}, nil
}

// Close releases the underlying file or object handle, if any.
func (r *Reader) Close() error {
	if r.rc != nil {
		return r.rc.Close()
	}
	return nil
}
