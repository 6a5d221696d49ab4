// Package parser turns heterogeneous Transfer Gov source files (xlsx or
// delimited text with unreliable encodings and separators) into normalized
// tables with canonical column names.
package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/xuri/excelize/v2"

	"github.com/snak3gh0st/projetustgov/pkg/encoding"
	"github.com/snak3gh0st/projetustgov/pkg/models"
)

// candidateDelimiters is tried in order; the files are produced by several
// upstream systems that disagree on the separator.
var candidateDelimiters = []rune{';', ',', '\t'}

// inferSampleSize bounds how many bytes the delimiter probe reads
const inferSampleSize = 16 * 1024

// Reader parses source files into Tables
type Reader struct {
	logger   ectologger.Logger
	detector *encoding.Detector
	policy   SchemaPolicy
}

func NewReader(policy SchemaPolicy, logger ectologger.Logger) *Reader {
	return &Reader{
		logger:   logger,
		detector: encoding.NewDetector(logger),
		policy:   policy,
	}
}

// ReadFile parses the file at path as the declared entity type, resolves
// column aliases, and validates the schema. Fails with ErrEmptyFile when
// the file has zero data rows and ErrUnsupportedFormat for unknown
// extensions.
func (r *Reader) ReadFile(path string, entity models.EntityType) (*Table, error) {
	log := r.logger.WithFields(map[string]any{"path": path, "entity": string(entity)})

	var table *Table
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		table, err = r.readExcel(path, entity)
	case ".csv":
		table, err = r.readCSV(path, entity)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if table.RowCount() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ResolveAliases(table)

	if err := ValidateSchema(table, r.policy, r.logger); err != nil {
		return nil, err
	}

	log.WithFields(map[string]any{"rows": table.RowCount(), "columns": len(table.Columns)}).Info("Parsed source file")
	return table, nil
}

func (r *Reader) readExcel(path string, entity models.EntityType) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	return buildTable(path, entity, rows[0], rows[1:]), nil
}

func (r *Reader) readCSV(path string, entity models.EntityType) (*Table, error) {
	enc := r.detector.Detect(path)

	delimiter, ok := r.inferDelimiter(path, enc)
	if !ok {
		r.logger.WithField("path", path).Warn("No delimiter candidate parsed the file, using lenient fallback")
		return r.readCSVLenient(path, enc, entity)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(encoding.NewReader(bufio.NewReader(file), enc))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // source rows are frequently ragged

	records, err := reader.ReadAll()
	if err != nil {
		r.logger.WithError(err).WithField("path", path).Warn("Strict CSV parse failed, using lenient fallback")
		return r.readCSVLenient(path, enc, entity)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	return buildTable(path, entity, records[0], records[1:]), nil
}

// inferDelimiter probes a short prefix of the file with each candidate and
// accepts the first that yields more than one column.
func (r *Reader) inferDelimiter(path string, enc encoding.Encoding) (rune, bool) {
	for _, delimiter := range candidateDelimiters {
		file, err := os.Open(path)
		if err != nil {
			return 0, false
		}

		reader := csv.NewReader(io.LimitReader(encoding.NewReader(bufio.NewReader(file), enc), inferSampleSize))
		reader.Comma = delimiter
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		header, err := reader.Read()
		file.Close()
		if err == nil && len(header) > 1 {
			return delimiter, true
		}
	}
	return 0, false
}

// readCSVLenient reads everything as text line by line, splitting on the
// delimiter that best fits the header and dropping lines that cannot be
// split, instead of aborting the whole file.
func (r *Reader) readCSVLenient(path string, enc encoding.Encoding, entity models.EntityType) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(encoding.NewReader(bufio.NewReader(file), enc))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	headerLine := scanner.Text()

	delimiter := ";"
	best := 0
	for _, candidate := range []string{";", ",", "\t"} {
		if n := strings.Count(headerLine, candidate); n > best {
			best = n
			delimiter = candidate
		}
	}

	header := strings.Split(headerLine, delimiter)

	var rows [][]string
	dropped := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, delimiter)
		if len(fields) < 2 {
			dropped++
			continue
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if dropped > 0 {
		r.logger.WithFields(map[string]any{"path": path, "dropped": dropped}).Warn("Dropped malformed lines during lenient parse")
	}

	return buildTable(path, entity, header, rows), nil
}

// buildTable assembles the normalized table, padding or truncating ragged
// rows to the header width.
func buildTable(path string, entity models.EntityType, header []string, records [][]string) *Table {
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		if isBlank(record) {
			continue
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{
		Path:    path,
		Entity:  entity,
		Columns: columns,
		Rows:    rows,
	}
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
