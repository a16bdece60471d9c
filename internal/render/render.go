// Package render turns records of one kind into list rows for the
// selection controller and into text tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"sas-panel/internal/models"
	"sas-panel/internal/selection"
)

// Row is a descriptor plus the text shown in each column.
type Row struct {
	selection.RowDescriptor
	Cells []string
}

// Table is a rendered list: the header row first, then one row per record.
type Table struct {
	Kind    models.Kind
	Columns []string
	Rows    []Row
}

// Columns returns the column titles for kind.
func Columns(kind models.Kind) []string {
	switch kind {
	case models.KindTemplate:
		return []string{"ID", "LABEL", "MESSAGE"}
	case models.KindRecipient:
		return []string{"ID", "NAME", "TELEPHONE", "ADDRESS"}
	case models.KindRule:
		return []string{"ID", "LABEL", "TEMPLATE", "RECIPIENTS", "START", "END", "REPEAT", "LAST RUN"}
	}
	return nil
}

// Cells returns the column values for rec.
func Cells(rec models.Record) []string {
	switch r := rec.(type) {
	case *models.Template:
		return []string{id(r.ID), r.Label, ellipsize(r.Message, 48)}
	case *models.Recipient:
		return []string{id(r.ID), r.FullName(), r.Telephone, r.Address}
	case *models.DeliveryRule:
		return []string{
			id(r.ID),
			r.Label,
			id(r.Template),
			joinIDs(r.Recipients),
			models.FormatTimestamp(r.StartDate),
			optionalTime(r.EndDate),
			models.FormatInterval(r.Interval),
			optionalTime(r.LastExecuted),
		}
	}
	return nil
}

// List checks that every record is of kind and hands them to a new
// selection controller.
func List(kind models.Kind, records []models.Record, observer selection.Observer) (*selection.Controller, error) {
	if Columns(kind) == nil {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	for i, r := range records {
		if r.Kind() != kind {
			return nil, fmt.Errorf("record %d is a %s, not a %s", i, r.Kind(), kind)
		}
	}
	return selection.New(records, observer), nil
}

// Build renders the controller's current state.
func Build(kind models.Kind, c *selection.Controller) Table {
	descs := c.Descriptors()
	t := Table{Kind: kind, Columns: Columns(kind), Rows: make([]Row, len(descs))}
	for i, d := range descs {
		if d.IsHeader {
			t.Rows[i] = Row{RowDescriptor: d, Cells: t.Columns}
			continue
		}
		t.Rows[i] = Row{RowDescriptor: d, Cells: Cells(d.Record)}
	}
	return t
}

// Mark is the checkbox drawn for a row.
func Mark(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// Write prints t as aligned text. Data rows are numbered from 1 so they can
// be toggled by number; the header is row 0.
func Write(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range t.Rows {
		num := "#"
		if !row.IsHeader {
			num = strconv.Itoa(row.Index + 1)
		}
		fields := append([]string{num, Mark(row.Checked)}, row.Cells...)
		if _, err := fmt.Fprintln(tw, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func id(v int64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return models.FormatTimestamp(*t)
}

func ellipsize(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
