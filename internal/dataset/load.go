package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/flixlens-cli/internal/logging"
)

// Options controls how a source file is read.
type Options struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex is the 1-based XLSX sheet used when SheetName is empty.
	SheetIndex int
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

var errNoHeader = errors.New("no columns to parse from file")

// Load reads a delimited or XLSX file into a Table. On failure it logs the
// error and returns a nil table with a *LoadError; callers check the error
// before any downstream call.
func Load(path string, opt Options) (*Table, error) {
	var (
		t   *Table
		err error
	)
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		t, err = loadXLSX(path, opt)
	} else {
		t, err = loadCSV(path, opt)
	}
	if err != nil {
		lerr := &LoadError{Path: path, Err: err}
		logging.Error().Err(err).Str("path", path).Msg("error loading data")
		return nil, lerr
	}
	logging.Info().Str("path", path).Int("rows", t.Len()).Strs("columns", t.Columns()).Msg("loaded table")
	return t, nil
}

func loadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return readDelimited(f, filepath.Base(path), delimiterFor(path, opt.Delimiter), opt.MaxRows)
}

func readDelimited(r io.Reader, name string, delim rune, maxRows int) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var records [][]string
	for maxRows <= 0 || len(records) < maxRows {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return NewTable(name, header, records), nil
}

func loadXLSX(path string, opt Options) (*Table, error) {
	rows, err := readSheetRows(path, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errNoHeader
	}
	records := rows[1:]
	if opt.MaxRows > 0 && len(records) > opt.MaxRows {
		records = records[:opt.MaxRows]
	}
	return NewTable(filepath.Base(path), rows[0], records), nil
}

func delimiterFor(path string, d rune) rune {
	if d != 0 {
		return d
	}
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ParseDelimiter maps a CLI flag value to a delimiter rune; "" means auto.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s", s)
	}
}
