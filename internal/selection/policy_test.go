package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	tests := []struct {
		count int
		want  ActionState
	}{
		{0, ActionState{Edit: false, Delete: false}},
		{1, ActionState{Edit: true, Delete: true}},
		{2, ActionState{Edit: false, Delete: true}},
		{17, ActionState{Edit: false, Delete: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultPolicy(tt.count), "count %d", tt.count)
	}
}

func TestPolicyObserver_DrivesActions(t *testing.T) {
	var state ActionState
	c := New(templates(1, 2, 3), PolicyObserver(nil, func(s ActionState) { state = s }))
	assert.Equal(t, ActionState{}, state)

	require.NoError(t, c.SetRow(1, true))
	assert.Equal(t, ActionState{Edit: true, Delete: true}, state)

	require.NoError(t, c.SetRow(2, true))
	assert.Equal(t, ActionState{Delete: true}, state)

	c.SetHeader(false)
	assert.Equal(t, ActionState{}, state)
}

func TestPolicyObserver_CustomPolicy(t *testing.T) {
	var state ActionState
	editAny := func(n int) ActionState { return ActionState{Edit: n > 0, Delete: n > 0} }
	c := New(templates(1, 2), PolicyObserver(editAny, func(s ActionState) { state = s }))

	c.SetHeader(true)
	assert.Equal(t, ActionState{Edit: true, Delete: true}, state)
}
