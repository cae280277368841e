// Package search 实现实时搜索的防抖窗口。
package search

import (
	"sync"
	"time"
)

// Debouncer 实现定时器复位式防抖：每次 Trigger 都重置延迟窗口，
// 只有窗口到期时仍然存活的那次回调会被执行。
// 由构造保证不会有两次回调在重叠的窗口内同时触发。
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer 创建一个延迟为 delay 的防抖器。
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger 重置防抖窗口并安排 fn 在窗口到期时执行。
// 窗口内的再次 Trigger 会取消之前安排的回调。
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop 取消尚未触发的回调。离开页面等清理路径调用。
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
