package bulk

import (
	"context"
	"sync"
	"testing"
	"time"

	"outbound-dialer/internal/calls"
	"outbound-dialer/internal/credentials"
	"outbound-dialer/internal/leads"
	"outbound-dialer/internal/notify"
	"outbound-dialer/internal/telephony"
)

type fakeTimer struct {
	clock   *fakeClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// Fire runs the callback if the timer is still armed. Blocks until the sequencer takes the tick.
func (t *fakeTimer) Fire() {
	t.clock.mu.Lock()
	if t.stopped || t.fired {
		t.clock.mu.Unlock()
		return
	}
	t.fired = true
	t.clock.mu.Unlock()
	t.f()
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) armed() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fakeDialer answers by destination number. A non-nil gate holds every call until a value is sent.
type fakeDialer struct {
	mu      sync.Mutex
	dialed  []string
	errs    map[string]error
	gate    chan struct{}
	started chan string
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{errs: map[string]error{}, started: make(chan string, 16)}
}

func (d *fakeDialer) PlaceCall(ctx context.Context, creds telephony.Credentials, to string, _ map[string]any) (telephony.PlaceCallResult, error) {
	d.mu.Lock()
	d.dialed = append(d.dialed, to)
	err := d.errs[to]
	gate := d.gate
	d.mu.Unlock()

	d.started <- to
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return telephony.PlaceCallResult{}, ctx.Err()
		}
	}
	if err != nil {
		return telephony.PlaceCallResult{}, err
	}
	return telephony.PlaceCallResult{ID: "call-" + to, From: "+19990000000", To: to, QueuePosition: 1}, nil
}

func (d *fakeDialer) calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dialed...)
}

type storeCreds struct {
	*credentials.Store
	invalidations int
	mu            sync.Mutex
}

func (s *storeCreds) Invalidate(_ context.Context, _ string) {
	s.mu.Lock()
	s.invalidations++
	s.mu.Unlock()
	s.Clear()
}

type harness struct {
	t       *testing.T
	seq     *Sequencer
	clock   *fakeClock
	dialer  *fakeDialer
	creds   *storeCreds
	leads   *leads.Repository
	log     *calls.MemoryRepo
	notes   *notify.Service
	events  chan Event
	stopRun context.CancelFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := credentials.NewStore(credentials.NewMemoryKV(), "u1", nil)
	store.Save(credentials.Credentials{OutboundID: "out-1", BearerToken: "Bearer tok"})

	h := &harness{
		t:      t,
		clock:  &fakeClock{},
		dialer: newFakeDialer(),
		creds:  &storeCreds{Store: store},
		leads:  leads.NewRepository(),
		log:    calls.NewMemoryRepo(),
		notes:  notify.New(10),
		events: make(chan Event, 64),
	}
	caller := &Caller{
		UserID: "u1",
		Dialer: h.dialer,
		Creds:  h.creds,
		Leads:  h.leads,
		Calls:  calls.NewLog(h.log),
		Notify: h.notes,
	}
	h.seq = NewSequencer(caller, h.clock, DefaultTimeframe)
	h.seq.Subscribe(func(e Event) { h.events <- e })

	ctx, cancel := context.WithCancel(context.Background())
	h.stopRun = cancel
	go h.seq.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.seq.Done()
	})
	return h
}

func (h *harness) add(first, phone string) leads.Lead {
	h.t.Helper()
	l, err := h.leads.Add(leads.Lead{FirstName: first, LastName: "Test", PhoneNumber: phone})
	if err != nil {
		h.t.Fatalf("add lead: %v", err)
	}
	return l
}

func (h *harness) await(typ EventType) Event {
	h.t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-h.events:
			if e.Type == typ {
				return e
			}
		case <-deadline:
			h.t.Fatalf("timed out waiting for %s", typ)
			return Event{}
		}
	}
}

func (h *harness) status(id string) leads.Status {
	h.t.Helper()
	l, err := h.leads.Get(id)
	if err != nil {
		h.t.Fatalf("get lead: %v", err)
	}
	return l.Status
}

func (h *harness) state() State {
	h.t.Helper()
	st, err := h.seq.State(context.Background())
	if err != nil {
		h.t.Fatalf("state: %v", err)
	}
	return st
}
