package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var csvHeader = []string{"timestamp", "content_id", "content_text", "generated_reply", "success"}

// CSVRecorder appends outcomes to a comma-separated file with a header row.
// Fields are quoted per RFC 4180, so separators, quotes and newlines in the
// text round-trip unchanged. encoding/csv drops a CR before LF even inside
// quotes, so the text columns store CR as \r and a backslash as \\.
type CSVRecorder struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*CSVRecorder)(nil)

// NewCSVRecorder creates the file and its directory if needed and writes
// the header row when the file is empty.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to init log file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if st.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	return &CSVRecorder{path: path}, nil
}

// AppendOutcome writes one row.
func (r *CSVRecorder) AppendOutcome(_ context.Context, o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(toRow(o)); err != nil {
		return fmt.Errorf("encode append: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush append: %w", err)
	}
	return nil
}

// LoadOutcomes reads every row back, skipping the header.
func (r *CSVRecorder) LoadOutcomes(_ context.Context) ([]Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(csvHeader)
	var out []Outcome
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if first {
			first = false
			if row[0] == csvHeader[0] {
				continue
			}
		}
		o, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *CSVRecorder) Close() error { return nil }

func toRow(o Outcome) []string {
	return []string{
		o.Timestamp.UTC().Format(time.RFC3339Nano),
		o.ContentID,
		escapeText(o.ContentText),
		escapeText(o.GeneratedReply),
		strconv.FormatBool(o.Success),
	}
}

func fromRow(row []string) (Outcome, error) {
	ts, err := time.Parse(time.RFC3339Nano, row[0])
	if err != nil {
		return Outcome{}, fmt.Errorf("parse timestamp %q: %w", row[0], err)
	}
	ok, err := strconv.ParseBool(row[4])
	if err != nil {
		return Outcome{}, fmt.Errorf("parse success %q: %w", row[4], err)
	}
	return Outcome{Timestamp: ts, ContentID: row[1], ContentText: unescapeText(row[2]), GeneratedReply: unescapeText(row[3]), Success: ok}, nil
}

var textEscaper = strings.NewReplacer(`\`, `\\`, "\r", `\r`)

func escapeText(s string) string { return textEscaper.Replace(s) }

func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'r':
				b.WriteByte('\r')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
