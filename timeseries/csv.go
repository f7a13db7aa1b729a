package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// CSVOptions holds options for wide CSV loading.
type CSVOptions struct {
	KeyColumns []string // Columns kept as row attributes (default: all non-date columns)
	Delimiter  rune     // Field delimiter (default: ',')
	SkipRows   int      // Number of rows to skip before the header
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		Delimiter: ',',
	}
}

// LoadCSV loads a wide table from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a wide table from an io.Reader.
//
// The header must contain at least one column whose label parses as a
// date. Those columns hold cumulative counts; the rest are attributes
// such as "Province/State" or "Country/Region". Empty, NA and NaN count
// cells are read as zero, matching how a group-by sum treats them.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Table, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// Skip rows if needed
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty CSV")
		}
		return nil, err
	}

	keep := make(map[string]bool, len(opts.KeyColumns))
	for _, c := range opts.KeyColumns {
		keep[c] = true
	}

	var attrIdx, dateIdx []int
	table := &Table{}
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		header[i] = h
		if IsDateLabel(h) {
			dateIdx = append(dateIdx, i)
			table.Labels = append(table.Labels, h)
			continue
		}
		if len(keep) == 0 || keep[h] {
			attrIdx = append(attrIdx, i)
			table.Columns = append(table.Columns, h)
		}
	}
	if len(dateIdx) == 0 {
		return nil, errors.New("no date columns found in CSV header")
	}
	for _, c := range opts.KeyColumns {
		if !table.hasColumn(c) {
			return nil, fmt.Errorf("key column %q not found in CSV header", c)
		}
	}

	line := opts.SkipRows + 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		rec := Record{
			Attrs:  make(map[string]string, len(attrIdx)),
			Counts: make([]int64, len(dateIdx)),
		}
		for j, idx := range attrIdx {
			if idx < len(record) {
				rec.Attrs[table.Columns[j]] = strings.TrimSpace(strings.Trim(record[idx], "\""))
			}
		}
		for j, idx := range dateIdx {
			if idx >= len(record) {
				continue
			}
			n, err := parseCount(record[idx])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, header[idx], err)
			}
			rec.Counts[j] = n
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// parseCount reads a non-negative integer count. Integral float text
// such as "12.0" is accepted.
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(strings.Trim(s, "\""))
	if s == "" || s == "NA" || s == "NaN" || s == "null" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("invalid count %q", s)
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %q", s)
	}
	return n, nil
}

// Column is a named float column written alongside a series.
type Column struct {
	Name   string
	Values []float64
}

// SaveCSV writes a series, its delta and any extra aligned columns as
// long-format CSV with header "date,count,delta,...". Undefined deltas
// and NaN values are written as empty cells.
func SaveCSV(w io.Writer, series *Series, delta *Delta, extra ...Column) error {
	if delta != nil && delta.Len() != series.Len() {
		return errors.New("delta is not aligned with series")
	}
	for _, c := range extra {
		if len(c.Values) != series.Len() {
			return fmt.Errorf("column %q is not aligned with series", c.Name)
		}
	}

	writer := csv.NewWriter(w)

	header := []string{"date", "count"}
	if delta != nil {
		header = append(header, "delta")
	}
	for _, c := range extra {
		header = append(header, c.Name)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := range series.Counts {
		row := []string{
			series.Dates[i].Format("2006-01-02"),
			strconv.FormatInt(series.Counts[i], 10),
		}
		if delta != nil {
			p := delta.Points[i]
			if p.HasPrior {
				row = append(row, strconv.FormatInt(p.Value, 10))
			} else {
				row = append(row, "")
			}
		}
		for _, c := range extra {
			v := c.Values[i]
			if math.IsNaN(v) {
				row = append(row, "")
			} else {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSVFile writes the series to filename; see SaveCSV.
func SaveCSVFile(filename string, series *Series, delta *Delta, extra ...Column) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := SaveCSV(file, series, delta, extra...); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
