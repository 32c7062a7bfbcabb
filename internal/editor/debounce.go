package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const writeTimeout = 15 * time.Second

// Timer is the part of *time.Timer the debouncer uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. Tests replace it with a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc wraps time.AfterFunc.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WriteFunc persists the content of one section.
type WriteFunc func(ctx context.Context, sectionID, content string) error

type pendingWrite struct {
	content string
	timer   Timer
	gen     uint64
}

// Debouncer coalesces repeated writes to the same id into one write of the
// latest content once the id has been quiet for the configured delay.
// Writes for one id never overlap. Different ids are independent.
type Debouncer struct {
	delay   time.Duration
	after   AfterFunc
	write   WriteFunc
	onError func(sectionID string, err error)

	mu      sync.Mutex
	gen     uint64
	pending map[string]*pendingWrite
	failed  map[string]string
	locks   map[string]*sync.Mutex
	closed  bool

	inflight atomic.Int32
	wg       sync.WaitGroup
}

func NewDebouncer(delay time.Duration, after AfterFunc, write WriteFunc, onError func(string, error)) *Debouncer {
	if after == nil {
		after = RealAfterFunc
	}
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Debouncer{
		delay:   delay,
		after:   after,
		write:   write,
		onError: onError,
		pending: make(map[string]*pendingWrite),
		failed:  make(map[string]string),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Schedule records content as the value to write for id and restarts the
// quiet window for that id.
func (d *Debouncer) Schedule(id, content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	delete(d.failed, id)
	d.gen++
	gen := d.gen

	p, ok := d.pending[id]
	if ok {
		p.timer.Stop()
		p.content = content
		p.gen = gen
	} else {
		p = &pendingWrite{content: content, gen: gen}
		d.pending[id] = p
	}
	p.timer = d.after(d.delay, func() { d.fire(id, gen) })
}

// fire runs when a timer expires. A timer superseded by a later Schedule
// finds a different generation and does nothing. The id lock is taken
// before the pending entry is claimed, so a Flush of newer content that
// wins the lock leaves this timer nothing to write.
func (d *Debouncer) fire(id string, gen uint64) {
	lock := d.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	d.mu.Lock()
	p, ok := d.pending[id]
	if !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, id)
	content := p.content
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	_ = d.writeLocked(context.Background(), id, content)
}

func (d *Debouncer) run(ctx context.Context, id, content string) error {
	lock := d.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	return d.writeLocked(ctx, id, content)
}

// writeLocked must be called with the id lock held.
func (d *Debouncer) writeLocked(ctx context.Context, id, content string) error {
	d.inflight.Add(1)
	defer d.inflight.Add(-1)

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err := d.write(ctx, id, content)
	if err != nil {
		d.mu.Lock()
		// a newer edit already carries the latest content
		if _, newer := d.pending[id]; !newer {
			d.failed[id] = content
		}
		d.mu.Unlock()
		d.onError(id, err)
	}
	return err
}

func (d *Debouncer) lockFor(id string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[id]
	if !ok {
		l = &sync.Mutex{}
		d.locks[id] = l
	}
	return l
}

// Cancel forgets any pending or failed write for id.
func (d *Debouncer) Cancel(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[id]; ok {
		p.timer.Stop()
		delete(d.pending, id)
	}
	delete(d.failed, id)
}

// Saving reports whether a write is in flight.
func (d *Debouncer) Saving() bool {
	return d.inflight.Load() > 0
}

// Pending counts ids whose latest content is not yet persisted.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending) + len(d.failed)
}

// Flush writes every pending and previously failed id now and waits for
// writes already in flight.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.mu.Lock()
	work := make(map[string]string, len(d.pending)+len(d.failed))
	for id, content := range d.failed {
		work[id] = content
	}
	for id, p := range d.pending {
		p.timer.Stop()
		work[id] = p.content
	}
	d.pending = make(map[string]*pendingWrite)
	d.failed = make(map[string]string)
	d.mu.Unlock()

	var errs []error
	for id, content := range work {
		if err := d.run(ctx, id, content); err != nil {
			errs = append(errs, err)
		}
	}
	d.wg.Wait()
	return errors.Join(errs...)
}

// Stop discards everything pending and refuses further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for _, p := range d.pending {
		p.timer.Stop()
	}
	d.pending = make(map[string]*pendingWrite)
	d.failed = make(map[string]string)
}
