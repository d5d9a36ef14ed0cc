package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kailas-cloud/aptdex/internal/ingest"
)

// Writer writes CSV records prefixed with a UTF-8 byte order mark so that
// spreadsheet applications detect the encoding.
type Writer struct {
	tw io.WriteCloser
	cw *csv.Writer
}

// NewWriter starts a BOM-prefixed CSV stream on w and writes header.
func NewWriter(w io.Writer, header []string) (*Writer, error) {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return &Writer{tw: tw, cw: cw}, nil
}

// Write appends one record.
func (w *Writer) Write(record []string) error {
	if err := w.cw.Write(record); err != nil {
		return fmt.Errorf("write csv record: %w", err)
	}
	return nil
}

// Close flushes buffered records and the encoder.
func (w *Writer) Close() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return w.tw.Close()
}

// WriteRows writes raw rows under the sorted union of their columns.
// Columns a row lacks are written empty.
func WriteRows(w io.Writer, rows []ingest.Row) error {
	seen := map[string]struct{}{}
	var header []string
	for _, r := range rows {
		for k := range r {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)

	tw, err := NewWriter(w, header)
	if err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, r := range rows {
		for i, h := range header {
			record[i] = r[h]
		}
		if err := tw.Write(record); err != nil {
			return err
		}
	}
	return tw.Close()
}
