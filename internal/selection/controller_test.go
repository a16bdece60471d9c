package selection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sas-panel/internal/models"
)

type countRecorder struct {
	mu     sync.Mutex
	counts []int
}

func (r *countRecorder) observe(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, n)
}

func (r *countRecorder) last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[len(r.counts)-1]
}

func templates(ids ...int64) []models.Record {
	out := make([]models.Record, len(ids))
	for i, id := range ids {
		out[i] = &models.Template{ID: id, Message: "m"}
	}
	return out
}

func TestController_InitialState(t *testing.T) {
	rec := &countRecorder{}
	c := New(templates(1, 2, 3), rec.observe)

	assert.False(t, c.Header())
	assert.Equal(t, []bool{false, false, false}, c.Checked())
	assert.Equal(t, []int{0}, rec.counts)
}

func TestController_EmptyList(t *testing.T) {
	rec := &countRecorder{}
	c := New(nil, rec.observe)

	descs := c.Descriptors()
	require.Len(t, descs, 1)
	assert.True(t, descs[0].IsHeader)
	assert.Nil(t, descs[0].Record)
	assert.Equal(t, HeaderIndex, descs[0].Index)

	// No vacuous "all checked" on an empty list.
	c.SetHeader(true)
	assert.False(t, c.Header())
	assert.Equal(t, []int{0, 0}, rec.counts)
}

func TestController_HeaderBroadcast(t *testing.T) {
	rec := &countRecorder{}
	c := New(templates(1, 2, 3), rec.observe)
	require.NoError(t, c.SetRow(2, true))

	c.SetHeader(true)
	assert.Equal(t, []bool{true, true, true}, c.Checked())
	assert.True(t, c.Header())
	assert.Equal(t, 3, rec.last())

	c.SetHeader(false)
	assert.Equal(t, []bool{false, false, false}, c.Checked())
	assert.False(t, c.Header())
	assert.Equal(t, 0, rec.last())
}

func TestController_HeaderReflectsAllRows(t *testing.T) {
	c := New(templates(1, 2, 3), nil)

	steps := []struct {
		row     int
		checked bool
	}{
		{0, true}, {1, true}, {2, true}, {1, false}, {1, true}, {0, false}, {0, false},
	}
	for _, s := range steps {
		require.NoError(t, c.SetRow(s.row, s.checked))

		all := true
		for _, v := range c.Checked() {
			all = all && v
		}
		assert.Equal(t, all, c.Header(), "after setting row %d to %v", s.row, s.checked)
	}
}

func TestController_CountsReachObserver(t *testing.T) {
	rec := &countRecorder{}
	c := New(templates(1, 2, 3), rec.observe)

	require.NoError(t, c.SetRow(1, true))
	assert.Equal(t, 1, rec.last())

	require.NoError(t, c.SetRow(2, true))
	assert.Equal(t, 2, rec.last())

	// Repeating a toggle is harmless.
	require.NoError(t, c.SetRow(2, true))
	assert.Equal(t, 2, rec.last())

	require.NoError(t, c.Toggle(1))
	assert.Equal(t, 1, rec.last())

	assert.Equal(t, []int{0, 1, 2, 2, 1}, rec.counts)
}

func TestController_OutOfRange(t *testing.T) {
	rec := &countRecorder{}
	c := New(templates(1), rec.observe)

	assert.Error(t, c.SetRow(1, true))
	assert.Error(t, c.SetRow(HeaderIndex, true))
	assert.Error(t, c.Toggle(5))
	assert.Equal(t, []int{0}, rec.counts)
}

func TestController_DescriptorsDispatchToOwner(t *testing.T) {
	c := New(templates(10, 20), nil)

	descs := c.Descriptors()
	require.Len(t, descs, 3)
	assert.Same(t, c, descs[1].Owner)
	assert.Equal(t, int64(20), descs[2].Record.RecordID())

	require.NoError(t, descs[2].Set(true))
	assert.Equal(t, []bool{false, true}, c.Checked())

	require.NoError(t, descs[0].Set(true))
	assert.Equal(t, []bool{true, true}, c.Checked())

	assert.Error(t, RowDescriptor{Index: 0}.Set(true))
}

func TestController_SelectAndReset(t *testing.T) {
	rec := &countRecorder{}
	c := New(templates(4, 5, 6), rec.observe)

	assert.Equal(t, 2, c.Select(4, 6, 99))
	assert.Equal(t, []int64{4, 6}, c.SelectedIDs())
	assert.Equal(t, 2, rec.last())

	c.ToggleHeader()
	assert.True(t, c.Header())
	assert.Len(t, c.Selected(), 3)

	c.Reset(templates(7))
	assert.Equal(t, 1, c.Len())
	assert.Zero(t, c.Count())
	assert.False(t, c.Header())
	assert.Equal(t, 0, rec.last())
	assert.Empty(t, c.SelectedIDs())
}

func TestController_ObserverMayQueryController(t *testing.T) {
	var c *Controller
	var seen []bool
	c = New(templates(1, 2), func(int) {
		if c != nil {
			seen = append(seen, c.Header())
		}
	})

	c.SetHeader(true)
	assert.Equal(t, []bool{true}, seen)
}

func TestController_ConcurrentTogglesFlipOncePerCall(t *testing.T) {
	rec := &countRecorder{}
	c := New(templates(1, 2), rec.observe)

	const toggles = 200
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Toggle(0))
		}()
		go func() {
			defer wg.Done()
			c.ToggleHeader()
		}()
	}
	wg.Wait()

	// Each call flips exactly once, so an even number of each leaves the
	// header where it started and row 0 back to unchecked.
	assert.Equal(t, []bool{false, false}, c.Checked())
	assert.False(t, c.Header())
	assert.Len(t, rec.counts, 1+2*toggles)
}
