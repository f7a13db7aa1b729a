package timeseries

import (
	"fmt"
	"sort"
)

// Table is a wide table of cumulative counts: one record per region,
// one count column per reporting date.
type Table struct {
	Columns []string // attribute column names
	Labels  []string // date column labels, in file order
	Records []Record
}

// Record is one table row.
type Record struct {
	Attrs  map[string]string
	Counts []int64
}

func (t *Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Aggregate groups records by the value of column and sums their counts.
// The result has one record per distinct key, sorted by key, with column
// as its only attribute.
func (t *Table) Aggregate(column string) (*Table, error) {
	if !t.hasColumn(column) {
		return nil, fmt.Errorf("unknown column %q", column)
	}

	sums := make(map[string][]int64)
	for _, rec := range t.Records {
		key := rec.Attrs[column]
		acc, ok := sums[key]
		if !ok {
			acc = make([]int64, len(t.Labels))
			sums[key] = acc
		}
		for i, c := range rec.Counts {
			acc[i] += c
		}
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &Table{
		Columns: []string{column},
		Labels:  append([]string(nil), t.Labels...),
		Records: make([]Record, 0, len(keys)),
	}
	for _, k := range keys {
		out.Records = append(out.Records, Record{
			Attrs:  map[string]string{column: k},
			Counts: sums[k],
		})
	}
	return out, nil
}

// Keys returns the distinct values of column in record order.
func (t *Table) Keys(column string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, rec := range t.Records {
		k, ok := rec.Attrs[column]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// Row returns the counts of the single record whose column equals key.
// The table must already be aggregated on column: a key matching several
// records is an error, as is a missing key.
func (t *Table) Row(column, key string) (Row, error) {
	var found *Record
	for i := range t.Records {
		if t.Records[i].Attrs[column] != key {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%s %q matches several rows; aggregate the table first", column, key)
		}
		found = &t.Records[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%s %q not found", column, key)
	}

	row := make(Row, len(t.Labels))
	for i, label := range t.Labels {
		row[label] = found.Counts[i]
	}
	return row, nil
}
