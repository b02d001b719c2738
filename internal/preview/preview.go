// Package preview builds the live-preview document for the exercise editor.
package preview

import (
	"strings"
	"sync"
	"time"
)

// DefaultDelay is the idle time after the last edit before a preview is rendered.
const DefaultDelay = 300 * time.Millisecond

type Fragments struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// Compose wraps the fragments into a single document. The fragments are
// inserted verbatim; isolation is the job of the sandboxed iframe.
func Compose(f Fragments) string {
	var b strings.Builder
	b.Grow(len(f.HTML) + len(f.CSS) + len(f.JS) + 80)
	b.WriteString("<html><head><style>")
	b.WriteString(f.CSS)
	b.WriteString("</style></head><body>")
	b.WriteString(f.HTML)
	b.WriteString("<script>")
	b.WriteString(f.JS)
	b.WriteString("</script></body></html>")
	return b.String()
}

// Debouncer calls fn with the most recent fragments once no Push has
// arrived for delay. After Stop no further calls are made.
type Debouncer struct {
	delay time.Duration
	fn    func(Fragments)

	mu      sync.Mutex
	timer   *time.Timer
	latest  Fragments
	gen     uint64
	stopped bool
}

func NewDebouncer(delay time.Duration, fn func(Fragments)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

func (d *Debouncer) Push(f Fragments) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.latest = f
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	f := d.latest
	d.timer = nil
	d.mu.Unlock()

	d.fn(f)
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
