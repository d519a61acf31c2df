// Package debugconsole collects debug lines produced while tracking planes and exposes them as a
// single scrolling text, plus live subscriptions for readers that follow along.
package debugconsole

import (
	"strings"
	"sync"

	"go.uber.org/atomic"
)

// A Sink receives debug messages.
type Sink interface {
	SendDebug(message string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(message string)

// SendDebug calls f(message).
func (f SinkFunc) SendDebug(message string) {
	f(message)
}

type multiSink []Sink

func (ms multiSink) SendDebug(message string) {
	for _, s := range ms {
		s.SendDebug(message)
	}
}

// Multi returns a Sink that forwards every message to each of sinks in order.
func Multi(sinks ...Sink) Sink {
	return multiSink(append([]Sink(nil), sinks...))
}

// Console is an in-memory, goroutine safe debug text stream. The zero value is not usable; use
// NewConsole.
type Console struct {
	enabled *atomic.Bool
	closed  *atomic.Bool

	mu          sync.Mutex
	maxLines    int
	lines       []string
	subscribers map[int]chan string
	nextSubID   int
}

// NewConsole returns an enabled console keeping at most maxLines lines. A maxLines of zero or
// less keeps every line.
func NewConsole(maxLines int) *Console {
	if maxLines < 0 {
		maxLines = 0
	}
	return &Console{
		enabled:     atomic.NewBool(true),
		closed:      atomic.NewBool(false),
		maxLines:    maxLines,
		subscribers: map[int]chan string{},
	}
}

// SendDebug appends message unless the console is disabled or closed.
func (c *Console) SendDebug(message string) {
	if !c.enabled.Load() || c.closed.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// re-checked under the lock so no send races with Close
	if c.closed.Load() {
		return
	}
	c.lines = append(c.lines, message)
	if c.maxLines > 0 && len(c.lines) > c.maxLines {
		c.lines = append(c.lines[:0], c.lines[len(c.lines)-c.maxLines:]...)
	}
	for _, ch := range c.subscribers {
		select {
		case ch <- message:
		default:
		}
	}
}

// SetEnabled turns message collection on or off. Messages sent while disabled are dropped.
func (c *Console) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// Enabled reports whether messages are being collected.
func (c *Console) Enabled() bool {
	return c.enabled.Load()
}

// Text returns every kept line joined by newlines.
func (c *Console) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

// Lines returns a copy of the kept lines, oldest first.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Len returns the number of kept lines.
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Clear drops every kept line.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Subscribe returns a channel receiving every message sent after the call, and a function to
// stop the subscription. Messages are dropped for a subscriber whose buffer is full. The channel
// is closed by the cancel function or by Close.
func (c *Console) Subscribe(bufferSize int) (<-chan string, func()) {
	ch := make(chan string, bufferSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close finishes every subscription. Later sends are dropped; kept lines stay readable.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Swap(true) {
		return
	}
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
}
