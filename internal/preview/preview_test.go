package preview

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_Exact(t *testing.T) {
	got := Compose(Fragments{HTML: "<h1>Hi</h1>", CSS: "h1{color:red}", JS: "console.log(1)"})
	assert.Equal(t,
		"<html><head><style>h1{color:red}</style></head><body><h1>Hi</h1><script>console.log(1)</script></body></html>",
		got)
}

func TestCompose_Empty(t *testing.T) {
	assert.Equal(t, "<html><head><style></style></head><body><script></script></body></html>", Compose(Fragments{}))
}

func TestCompose_NoCarryOver(t *testing.T) {
	first := Compose(Fragments{HTML: "<p>first</p>", CSS: "p{}", JS: "a()"})
	second := Compose(Fragments{HTML: "<p>second</p>"})

	assert.Contains(t, first, "<p>first</p>")
	assert.NotContains(t, second, "first")
	assert.NotContains(t, second, "a()")
}

func TestCompose_Verbatim(t *testing.T) {
	html := `<div onclick="x()">&amp; </script></div>`
	got := Compose(Fragments{HTML: html})
	assert.True(t, strings.Contains(got, "<body>"+html+"<script>"))
}

type recorder struct {
	mu    sync.Mutex
	calls []Fragments
}

func (r *recorder) fn(f Fragments) {
	r.mu.Lock()
	r.calls = append(r.calls, f)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []Fragments {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Fragments(nil), r.calls...)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(30*time.Millisecond, rec.fn)
	defer d.Stop()

	for _, h := range []string{"a", "ab", "abc"} {
		d.Push(Fragments{HTML: h})
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "abc", calls[0].HTML)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(20*time.Millisecond, rec.fn)

	d.Push(Fragments{HTML: "x"})
	d.Stop()
	d.Push(Fragments{HTML: "y"})

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(10*time.Millisecond, rec.fn)
	defer d.Stop()

	d.Push(Fragments{HTML: "one"})
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 2*time.Millisecond)
	d.Push(Fragments{HTML: "two"})
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 2*time.Millisecond)

	assert.Equal(t, "two", rec.snapshot()[1].HTML)
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0, func(Fragments) {})
	assert.Equal(t, DefaultDelay, d.delay)
}
