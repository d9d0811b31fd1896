package crm

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// exportColumns is the fixed schema of the intermediate file handed from
// the merge stage to the upload stage. Records are immutable once written.
var exportColumns = []string{
	"email",
	"first_name",
	"last_name",
	"company",
	"source_code",
	"industry",
	"record_type",
	"tags",
	"unsubscribed",
	"client_id",
}

// WriteExport serializes the merged record set to a UTF-8 CSV at path,
// stamping every row with the tenant client ID. Returns the number of
// records written.
func WriteExport(path string, records []*ContactRecord, clientID string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportColumns); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Email,
			r.FirstName,
			r.LastName,
			r.Company,
			r.SourceCode,
			r.Industry,
			string(r.RecordType),
			EncodeTags(r.Tags),
			boolLiteral(r.Unsubscribed),
			clientID,
		}
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("write export row for %s: %w", r.Email, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush export file: %w", err)
	}
	return len(records), nil
}

// ReadExport loads an intermediate file back into records, decoding the
// tag arrays. A missing file is fatal for the upload stage; the caller
// propagates the error.
func ReadExport(path string) ([]*ContactRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	return parseExport(f)
}

func parseExport(r io.Reader) ([]*ContactRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read export header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range exportColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("export file missing column %q", col)
		}
	}

	var records []*ContactRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read export row: %w", err)
		}

		field := func(col string) string { return row[index[col]] }
		tags, err := DecodeTags(field("tags"))
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", field("email"), err)
		}

		records = append(records, &ContactRecord{
			Email:        field("email"),
			FirstName:    field("first_name"),
			LastName:     field("last_name"),
			Company:      field("company"),
			SourceCode:   field("source_code"),
			Industry:     field("industry"),
			RecordType:   RecordType(field("record_type")),
			Tags:         tags,
			Unsubscribed: field("unsubscribed") == "true",
			ClientID:     field("client_id"),
		})
	}
	return records, nil
}

func boolLiteral(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
