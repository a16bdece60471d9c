// Package selection keeps a list's select-all header and its row checkboxes
// consistent, and reports how many rows are selected after every change.
package selection

import (
	"fmt"
	"sync"

	"sas-panel/internal/models"
)

// HeaderIndex is the index carried by the header descriptor.
const HeaderIndex = -1

// Observer receives the number of checked data rows after every change.
type Observer func(count int)

// RowDescriptor is one rendered list entry. Descriptors are snapshots; change
// state through Set, which goes back to the owning controller.
type RowDescriptor struct {
	Owner    *Controller
	Index    int
	IsHeader bool
	Record   models.Record // nil for the header
	Checked  bool
}

func (d RowDescriptor) Set(checked bool) error {
	if d.Owner == nil {
		return fmt.Errorf("row descriptor has no owner")
	}
	if d.IsHeader {
		d.Owner.SetHeader(checked)
		return nil
	}
	return d.Owner.SetRow(d.Index, checked)
}

// Controller owns the checked state of one list. The header is derived:
// checked iff there is at least one row and every row is checked.
type Controller struct {
	mu       sync.Mutex
	header   bool
	records  []models.Record
	checked  []bool
	observer Observer
}

// New builds a controller with every row unchecked and reports the initial
// count of zero. A nil observer is allowed.
func New(records []models.Record, observer Observer) *Controller {
	c := &Controller{observer: observer}
	c.Reset(records)
	return c
}

// Reset replaces the rows, all unchecked.
func (c *Controller) Reset(records []models.Record) {
	c.mu.Lock()
	c.records = append([]models.Record(nil), records...)
	c.checked = make([]bool, len(records))
	c.header = false
	c.mu.Unlock()

	c.notify(0)
}

// SetHeader broadcasts checked to every row.
func (c *Controller) SetHeader(checked bool) {
	c.mu.Lock()
	n := c.setHeaderLocked(checked)
	c.mu.Unlock()

	c.notify(n)
}

// ToggleHeader flips the header and broadcasts the new value.
func (c *Controller) ToggleHeader() {
	c.mu.Lock()
	n := c.setHeaderLocked(!c.header)
	c.mu.Unlock()

	c.notify(n)
}

// SetRow sets one data row and recomputes the header.
func (c *Controller) SetRow(i int, checked bool) error {
	c.mu.Lock()
	n, err := c.setRowLocked(i, func(bool) bool { return checked })
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notify(n)
	return nil
}

func (c *Controller) Toggle(i int) error {
	c.mu.Lock()
	n, err := c.setRowLocked(i, func(was bool) bool { return !was })
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notify(n)
	return nil
}

// setHeaderLocked and setRowLocked expect c.mu held and return the new count.
func (c *Controller) setHeaderLocked(checked bool) int {
	for i := range c.checked {
		c.checked[i] = checked
	}
	c.recompute()
	return c.count()
}

func (c *Controller) setRowLocked(i int, next func(was bool) bool) (int, error) {
	if i < 0 || i >= len(c.checked) {
		return 0, fmt.Errorf("row %d out of range [0, %d)", i, len(c.checked))
	}
	c.checked[i] = next(c.checked[i])
	c.recompute()
	return c.count(), nil
}

// Select checks the rows whose records carry one of ids, leaving other rows
// as they are, and returns how many rows matched.
func (c *Controller) Select(ids ...int64) int {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	c.mu.Lock()
	matched := 0
	for i, r := range c.records {
		if _, ok := want[r.RecordID()]; ok {
			c.checked[i] = true
			matched++
		}
	}
	c.recompute()
	n := c.count()
	c.mu.Unlock()

	c.notify(n)
	return matched
}

// recompute must be called with c.mu held.
func (c *Controller) recompute() {
	all := len(c.checked) > 0
	for _, v := range c.checked {
		if !v {
			all = false
			break
		}
	}
	c.header = all
}

// count must be called with c.mu held.
func (c *Controller) count() int {
	n := 0
	for _, v := range c.checked {
		if v {
			n++
		}
	}
	return n
}

func (c *Controller) notify(n int) {
	if c.observer != nil {
		c.observer(n)
	}
}

func (c *Controller) Header() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.header
}

// Len is the number of data rows.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Count is the number of checked data rows.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count()
}

// Checked returns the data rows' states in order.
func (c *Controller) Checked() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.checked...)
}

// Rows returns the data row descriptors, without the header.
func (c *Controller) Rows() []RowDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows()
}

// Descriptors returns the header followed by every data row.
func (c *Controller) Descriptors() []RowDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()

	header := RowDescriptor{Owner: c, Index: HeaderIndex, IsHeader: true, Checked: c.header}
	return append([]RowDescriptor{header}, c.rows()...)
}

// rows must be called with c.mu held.
func (c *Controller) rows() []RowDescriptor {
	rows := make([]RowDescriptor, len(c.records))
	for i, r := range c.records {
		rows[i] = RowDescriptor{Owner: c, Index: i, Record: r, Checked: c.checked[i]}
	}
	return rows
}

// Selected returns the records of the checked rows in list order.
func (c *Controller) Selected() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.Record
	for i, r := range c.records {
		if c.checked[i] {
			out = append(out, r)
		}
	}
	return out
}

func (c *Controller) SelectedIDs() []int64 {
	selected := c.Selected()
	ids := make([]int64, len(selected))
	for i, r := range selected {
		ids[i] = r.RecordID()
	}
	return ids
}
