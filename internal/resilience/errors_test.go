package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient_Nil(t *testing.T) {
	assert.False(t, IsTransient(nil))
}

func TestIsTransient_Wrapped(t *testing.T) {
	base := errors.New("boom")
	te := NewTransientError(base)
	assert.True(t, IsTransient(te))
	assert.True(t, IsTransient(fmt.Errorf("outer: %w", te)))
	assert.ErrorIs(t, te, base)
}

func TestIsTransient_Syscall(t *testing.T) {
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
}

func TestIsTransient_Patterns(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"read tcp: connection reset by peer", true},
		{"write: broken pipe", true},
		{"websocket: close 1006 (abnormal closure)", true},
		{"rod: Target closed", true},
		{"use of closed network connection", true},
		{"element not interactable", false},
		{"invalid selector", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsTransient(errors.New(tc.msg)), tc.msg)
	}
}

func TestBudget(t *testing.T) {
	b := NewBudget(2)
	assert.False(t, b.Exhausted())
	assert.Equal(t, 1, b.Consume())
	assert.False(t, b.Exhausted())
	assert.Equal(t, 2, b.Consume())
	assert.True(t, b.Exhausted())
	assert.Equal(t, 2, b.Used())
	assert.Equal(t, 2, b.Max())
}

func TestBudget_ZeroMaxIsImmediatelyExhausted(t *testing.T) {
	b := NewBudget(0)
	assert.True(t, b.Exhausted())
}
