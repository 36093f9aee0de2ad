package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStateDerivation(t *testing.T) {
	tests := []struct {
		statusA SideStatus
		statusB SideStatus
		want    EffectiveState
	}{
		{SidePending, SidePending, StateProposed},
		{SideAccepted, SidePending, StateHalfAccepted},
		{SidePending, SideAccepted, StateHalfAccepted},
		{SideAccepted, SideAccepted, StateActive},
		{SideRejected, SidePending, StateClosed},
		{SideRejected, SideAccepted, StateClosed},
		{SideRejected, SideRejected, StateClosed},
		{SidePending, SideRejected, StateClosed},
		{SideAccepted, SideRejected, StateClosed},
	}

	for _, tt := range tests {
		m := &Match{StatusA: tt.statusA, StatusB: tt.statusB}
		assert.Equal(t, tt.want, m.EffectiveState(), "(%s, %s)", tt.statusA, tt.statusB)
	}
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(7, 3)
	assert.Equal(t, int64(3), a)
	assert.Equal(t, int64(7), b)

	a, b = CanonicalPair(3, 7)
	assert.Equal(t, int64(3), a)
	assert.Equal(t, int64(7), b)

	assert.Equal(t, NewPairKey(7, 3), NewPairKey(3, 7))
}

func TestCounterpart(t *testing.T) {
	m := &Match{UserA: 3, UserB: 7}

	other, ok := m.Counterpart(3)
	assert.True(t, ok)
	assert.Equal(t, int64(7), other)

	other, ok = m.Counterpart(7)
	assert.True(t, ok)
	assert.Equal(t, int64(3), other)

	_, ok = m.Counterpart(99)
	assert.False(t, ok)
}
