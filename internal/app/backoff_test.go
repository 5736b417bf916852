package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 规定的退避曲线：base=2 factor=2 max=20 时连续限流休眠
// 2→4→8→16→20，封顶后不再增长。
func TestBackoffSchedule(t *testing.T) {
	b := NewBackoffState(2*time.Second, 20*time.Second, 2, 1)

	var got []time.Duration
	for i := 0; i < 6; i++ {
		got = append(got, b.Next())
	}
	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		20 * time.Second,
		20 * time.Second,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 20*time.Second, b.Delay())
}

func TestBackoffSettleResets(t *testing.T) {
	b := NewBackoffState(time.Second, 10*time.Second, 2, 1)
	b.Next()
	b.Next()
	assert.Equal(t, 4*time.Second, b.Delay())

	b.Settle()
	assert.Equal(t, time.Second, b.Delay())
}

func TestBackoffSettleRequiresStreak(t *testing.T) {
	b := NewBackoffState(time.Second, 10*time.Second, 2, 3)
	b.Next()
	assert.Equal(t, 2*time.Second, b.Delay())

	b.Settle()
	b.Settle()
	assert.Equal(t, 2*time.Second, b.Delay(), "连续两次还不够")
	b.Settle()
	assert.Equal(t, time.Second, b.Delay())

	// 中途再次限流会清空连续计数。
	b.Next()
	b.Settle()
	b.Settle()
	b.Next()
	b.Settle()
	b.Settle()
	assert.NotEqual(t, time.Second, b.Delay())
}

func TestBackoffClampsArguments(t *testing.T) {
	b := NewBackoffState(2*time.Second, time.Second, 0.5, 0)
	// max < base 时按 base 封顶，factor < 1 按 1 处理。
	assert.Equal(t, 2*time.Second, b.Next())
	assert.Equal(t, 2*time.Second, b.Delay())
}
