package app

import "time"

// BackoffState 维护跨词共享的查询间隔：被限流时指数增长，封顶于 max，
// 连续若干个未限流的最终结果之后回落到基准。状态只属于单线程的驱动循环，
// 不做任何进程级共享。
type BackoffState struct {
	base       time.Duration
	max        time.Duration
	factor     float64
	resetAfter int

	delay time.Duration
	clean int
}

// NewBackoffState 构造退避状态。factor 小于 1 按 1 处理，
// resetAfter 小于 1 按 1 处理（任一未限流结果即回落）。
func NewBackoffState(base, max time.Duration, factor float64, resetAfter int) *BackoffState {
	if factor < 1 {
		factor = 1
	}
	if resetAfter < 1 {
		resetAfter = 1
	}
	if max < base {
		max = base
	}
	return &BackoffState{
		base:       base,
		max:        max,
		factor:     factor,
		resetAfter: resetAfter,
		delay:      base,
	}
}

// Delay 返回当前的全局查询间隔，始终不小于基准间隔。
func (b *BackoffState) Delay() time.Duration { return b.delay }

// Next 返回本次限流应当休眠的时长，并把间隔推进到下一档：
// 第 n 次连续限流休眠 min(base·factor^(n-1), max)。
func (b *BackoffState) Next() time.Duration {
	d := b.delay
	grown := time.Duration(float64(b.delay) * b.factor)
	if grown > b.max {
		grown = b.max
	}
	if grown < b.base {
		grown = b.base
	}
	b.delay = grown
	b.clean = 0
	return d
}

// Settle 记录一次未被限流的最终结果；连续 resetAfter 次后间隔回落到基准。
func (b *BackoffState) Settle() {
	b.clean++
	if b.clean >= b.resetAfter {
		b.delay = b.base
		b.clean = 0
	}
}
