// Package tabular reads and writes the CSV files exchanged with spreadsheet users.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/ingest"
)

// ReadFile reads a CSV file into rows. A missing, unreadable or header-less
// file is reported as a DataUnavailableError for dataset.
func ReadFile(path, dataset string) ([]ingest.Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDataUnavailable(dataset, err)
	}
	rows, err := Read(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.NewDataUnavailable(dataset, err)
	}
	return rows, nil
}

// Read decodes CSV text into rows keyed by the header line. A leading UTF-8
// BOM is dropped; input that is not valid UTF-8 is decoded as EUC-KR.
func Read(r io.Reader) ([]ingest.Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	text, err := decode(raw)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows []ingest.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", len(rows)+2, err)
		}
		row := make(ingest.Row, len(header))
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decode(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		if err != nil {
			return "", fmt.Errorf("decode utf-8: %w", err)
		}
		return string(out), nil
	}
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decode euc-kr: %w", err)
	}
	return string(out), nil
}
