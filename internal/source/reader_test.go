package source

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestReader_HeaderKeyedAccess(t *testing.T) {
	csvData := "Email,First Name,Industry\nalice@x.com,Alice,Pharma\n"

	r, err := NewReader(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got := row.Get("Email"); got != "alice@x.com" {
		t.Errorf("Email = %q", got)
	}
	if got := row.Get("Industry"); got != "Pharma" {
		t.Errorf("Industry = %q", got)
	}
	// Missing columns degrade to empty, never error.
	if got := row.Get("Nonexistent"); got != "" {
		t.Errorf("missing column = %q, want empty", got)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_ShortRow(t *testing.T) {
	csvData := "Email,First Name,Industry\nbob@y.com\n"

	r, err := NewReader(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got := row.Get("Industry"); got != "" {
		t.Errorf("short row column = %q, want empty", got)
	}
}

func TestReader_DuplicateColumnKeepsFirst(t *testing.T) {
	csvData := "Email,Industry,Industry\na@x.com,Pharma,Chemicals\n"

	r, err := NewReader(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	row, _ := r.Next()
	if got := row.Get("Industry"); got != "Pharma" {
		t.Errorf("Industry = %q, want first occurrence Pharma", got)
	}
}

func TestNewLatin1Reader(t *testing.T) {
	// "Émile,Café" in ISO 8859-1: 0xC9 and 0xE9 are invalid as UTF-8.
	raw := []byte{'E', 'm', 'a', 'i', 'l', ',', 'C', 'o', 'm', 'p', 'a', 'n', 'y', '\n',
		0xC9, 'm', 'i', 'l', 'e', '@', 'x', '.', 'c', 'o', 'm', ',', 'C', 'a', 'f', 0xE9, '\n'}

	r, err := NewLatin1Reader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("NewLatin1Reader: %v", err)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got := row.Get("Company"); got != "Café" {
		t.Errorf("Company = %q, want Café", got)
	}
	if got := row.Get("Email"); got != "Émile@x.com" {
		t.Errorf("Email = %q, want Émile@x.com", got)
	}
}

func TestNewReader_EmptyInput(t *testing.T) {
	if _, err := NewReader(strings.NewReader("")); err == nil {
		t.Fatal("expected error for export without header row")
	}
}

func TestSplitS3Path(t *testing.T) {
	tests := []struct {
		path    string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://exports/crm/contacts.csv", "exports", "crm/contacts.csv", false},
		{"s3://bucket-only", "", "", true},
		{"s3:///no-bucket.csv", "", "", true},
	}

	for _, tt := range tests {
		bucket, key, err := splitS3Path(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("splitS3Path(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("splitS3Path(%q) = %q, %q", tt.path, bucket, key)
		}
	}
}
