package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// ByteCounter reports how many bytes have been sent so far.
// *httpclient.CountingBody satisfies it.
type ByteCounter interface {
	BytesRead() int64
}

// ProgressReporter prints upload progress on a single, rewritten line.
type ProgressReporter struct {
	counter  ByteCounter
	total    int64
	known    bool
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	start    time.Time
}

// NewProgressReporter creates a reporter for an upload of total bytes. Pass
// known=false when the size is not known in advance.
func NewProgressReporter(counter ByteCounter, total int64, known bool, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		counter:  counter,
		total:    total,
		known:    known,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates and prints the final line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		<-p.finished
		fmt.Fprintln(p.writer, p.line())
	}
	p.ticker.Stop()
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, p.line())
		case <-p.done:
			return
		}
	}
}

func (p *ProgressReporter) line() string {
	sent := p.counter.BytesRead()
	rate := 0.0
	if elapsed := time.Since(p.start).Seconds(); elapsed > 0 {
		rate = float64(sent) / elapsed
	}

	if p.known && p.total > 0 {
		pct := float64(sent) / float64(p.total) * 100
		return fmt.Sprintf("\rSent: %s / %s (%.0f%%) | %s/s",
			humanize.Bytes(uint64(sent)), humanize.Bytes(uint64(p.total)), pct, humanize.Bytes(uint64(rate)))
	}
	return fmt.Sprintf("\rSent: %s | %s/s", humanize.Bytes(uint64(sent)), humanize.Bytes(uint64(rate)))
}
