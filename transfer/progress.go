package transfer

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker accumulates bytes transferred for one transfer operation and
// renders a textual progress line (bytes, percent, elapsed time, rate).
//
// The transfer primitives may invoke the callback from worker goroutines
// concurrently with the main transfer loop, so the counter is guarded by
// a mutex. A Tracker belongs to exactly one transfer and is discarded
// when the transfer completes or fails.
type Tracker struct {
	mu          sync.Mutex
	transferred int64
	total       int64
	bar         *progressbar.ProgressBar
}

// NewTracker creates a Tracker for a transfer of total bytes, rendering
// progress to out. A nil out renders to stderr; use io.Discard to track
// without rendering.
func NewTracker(description string, total int64, out io.Writer) *Tracker {
	if out == nil {
		out = os.Stderr
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{
		total: total,
		bar:   bar,
	}
}

// Add records n more bytes transferred. Safe for concurrent use.
func (t *Tracker) Add(n int64) {
	t.mu.Lock()
	t.transferred += n
	t.mu.Unlock()
	_ = t.bar.Add64(n)
}

// Transferred returns the byte count accumulated so far.
func (t *Tracker) Transferred() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transferred
}

// Total returns the expected transfer size in bytes.
func (t *Tracker) Total() int64 {
	return t.total
}

// Callback returns a byte-count callback suitable for transfer
// primitives that report incremental counts.
func (t *Tracker) Callback() func(int64) {
	return t.Add
}

// Finish completes the progress rendering.
func (t *Tracker) Finish() {
	_ = t.bar.Finish()
}

// NewProxyReader wraps r so that every read is recorded on the tracker.
func (t *Tracker) NewProxyReader(r io.Reader) io.Reader {
	return &proxyReader{r: r, t: t}
}

// NewProxyWriter wraps w so that every write is recorded on the tracker.
func (t *Tracker) NewProxyWriter(w io.Writer) io.Writer {
	return &proxyWriter{w: w, t: t}
}

type proxyReader struct {
	r io.Reader
	t *Tracker
}

func (p *proxyReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.t.Add(int64(n))
	}
	return n, err
}

type proxyWriter struct {
	w io.Writer
	t *Tracker
}

func (p *proxyWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if n > 0 {
		p.t.Add(int64(n))
	}
	return n, err
}
