package bulk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"outbound-dialer/internal/leads"
)

type callDone struct {
	gen     uint64
	attempt Attempt
}

type tick struct {
	seq uint64
}

// Sequencer runs bulk call runs: one lead at a time, in selection order, with a fixed
// delay between the end of one attempt and the start of the next.
//
// All run state is owned by the Run goroutine. Start, Pause, Resume, Cancel and State
// are commands executed there; call results and timer ticks arrive as messages.
// Pause and Cancel stop scheduling but never interrupt the call in flight.
type Sequencer struct {
	caller           *Caller
	clock            Clock
	defaultTimeframe time.Duration

	cmds chan func()
	msgs chan any
	done chan struct{}

	subsMu sync.Mutex
	subs   map[int]func(Event)
	nextID int

	// owned by Run
	runCtx    context.Context
	state     State
	timeframe time.Duration
	queue     []leads.Lead
	gen       uint64
	inFlight  bool
	timer     Timer
	tickSeq   uint64
}

func NewSequencer(caller *Caller, clock Clock, defaultTimeframe time.Duration) *Sequencer {
	if clock == nil {
		clock = RealClock()
	}
	if defaultTimeframe <= 0 {
		defaultTimeframe = DefaultTimeframe
	}
	return &Sequencer{
		caller:           caller,
		clock:            clock,
		defaultTimeframe: defaultTimeframe,
		cmds:             make(chan func()),
		msgs:             make(chan any),
		done:             make(chan struct{}),
		subs:             map[int]func(Event){},
		timeframe:        defaultTimeframe,
		state:            State{Timeframe: int(defaultTimeframe / time.Second), Queued: []string{}},
	}
}

// Run owns the sequencer until ctx is done. Calls in flight use ctx and are aborted with it.
// Run must be called exactly once.
func (s *Sequencer) Run(ctx context.Context) {
	s.runCtx = ctx
	defer close(s.done)
	defer s.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.cmds:
			fn()
		case m := <-s.msgs:
			switch m := m.(type) {
			case callDone:
				s.onCallDone(m)
			case tick:
				s.onTick(m)
			}
		}
	}
}

// Done is closed once Run has returned.
func (s *Sequencer) Done() <-chan struct{} { return s.done }

// Subscribe registers fn for state-change events. fn runs on the owner goroutine and must not block.
func (s *Sequencer) Subscribe(fn func(Event)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// Start begins a run over the pending leads of selected, in order.
// A zero timeframe uses the default.
func (s *Sequencer) Start(ctx context.Context, selected []leads.Lead, timeframe time.Duration) (State, error) {
	if timeframe == 0 {
		timeframe = s.defaultTimeframe
	}
	if !s.caller.Creds.Credentials().Configured() {
		return State{}, ErrCredentialsRequired
	}
	if timeframe < MinTimeframe || timeframe > MaxTimeframe {
		return State{}, ErrInvalidTimeframe
	}

	var (
		st  State
		err error
	)
	if cerr := s.do(ctx, func() { st, err = s.start(selected, timeframe) }); cerr != nil {
		return State{}, cerr
	}
	return st, err
}

// Pause stops dequeuing. No-op unless a run is active and not paused.
func (s *Sequencer) Pause(ctx context.Context) (State, error) {
	var st State
	err := s.do(ctx, func() { st = s.pause() })
	return st, err
}

// Resume continues a paused run immediately. No-op otherwise.
func (s *Sequencer) Resume(ctx context.Context) (State, error) {
	var st State
	err := s.do(ctx, func() { st = s.resume() })
	return st, err
}

// Cancel drops the queue and resets to idle. Leads keep whatever status they have.
func (s *Sequencer) Cancel(ctx context.Context) (State, error) {
	var st State
	err := s.do(ctx, func() { st = s.cancel() })
	return st, err
}

func (s *Sequencer) State(ctx context.Context) (State, error) {
	var st State
	err := s.do(ctx, func() { st = s.snapshot() })
	return st, err
}

func (s *Sequencer) do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(ran) }:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

func (s *Sequencer) start(selected []leads.Lead, timeframe time.Duration) (State, error) {
	if s.state.InProgress {
		return s.snapshot(), ErrRunInProgress
	}

	// A call left over from a cancelled run is still pending in the repository
	// but already dialed; its result decides the lead.
	pending := make([]leads.Lead, 0, len(selected))
	for _, l := range selected {
		if l.Status == leads.StatusPending && !(s.inFlight && l.ID == s.state.InFlight) {
			pending = append(pending, l)
		}
	}
	if len(pending) == 0 {
		return s.snapshot(), ErrNoPendingLeads
	}

	s.stopTimer()
	s.gen++
	s.queue = pending
	s.timeframe = timeframe
	s.state = State{
		InProgress: true,
		TotalCalls: len(pending),
		Timeframe:  int(timeframe / time.Second),
		InFlight:   s.state.InFlight,
	}

	s.caller.Metrics.BulkStarted()
	s.caller.logger().Info("bulk run started", "total", len(pending), "timeframe_s", s.state.Timeframe)
	s.caller.Notify.Info("Bulk call started",
		fmt.Sprintf("Starting calls to %d leads with %d seconds between calls.", len(pending), s.state.Timeframe))
	s.emit(Event{Type: EventStarted})

	s.drain()
	return s.snapshot(), nil
}

func (s *Sequencer) pause() State {
	if !s.state.InProgress || s.state.Paused {
		return s.snapshot()
	}
	s.state.Paused = true
	s.stopTimer()

	s.caller.Notify.Info("Bulk call paused",
		fmt.Sprintf("Paused after %d of %d calls.", s.state.CurrentIndex, s.state.TotalCalls))
	s.emit(Event{Type: EventPaused})
	return s.snapshot()
}

func (s *Sequencer) resume() State {
	if !s.state.InProgress || !s.state.Paused {
		return s.snapshot()
	}
	s.state.Paused = false

	s.caller.Notify.Info("Bulk call resumed",
		fmt.Sprintf("Resuming with %d calls remaining.", len(s.queue)))
	s.emit(Event{Type: EventResumed})
	s.drain()
	return s.snapshot()
}

func (s *Sequencer) cancel() State {
	wasActive := s.state.InProgress
	s.stopTimer()
	s.queue = nil
	s.gen++
	s.state = State{Timeframe: s.state.Timeframe, InFlight: s.state.InFlight}

	if wasActive {
		s.caller.Metrics.BulkFinished("cancelled")
		s.caller.logger().Info("bulk run cancelled")
		s.caller.Notify.Info("Bulk call cancelled", "The bulk call operation has been cancelled.")
	}
	s.emit(Event{Type: EventCancelled})
	return s.snapshot()
}

// drain dispatches the head of the queue unless paused, idle or a call is already in flight.
// The head stays queued until its result arrives.
func (s *Sequencer) drain() {
	if !s.state.InProgress || s.state.Paused || s.inFlight || len(s.queue) == 0 {
		return
	}
	lead := s.queue[0]
	gen := s.gen
	s.inFlight = true
	s.state.InFlight = lead.ID

	ctx := s.runCtx
	go func() {
		a := s.caller.Call(ctx, lead, "bulk")
		select {
		case s.msgs <- callDone{gen: gen, attempt: a}:
		case <-s.done:
		}
	}()
}

func (s *Sequencer) onCallDone(m callDone) {
	s.inFlight = false
	s.state.InFlight = ""
	a := m.attempt

	if a.CredentialsCleared {
		s.emit(Event{Type: EventCredentialsRequired, LeadID: a.LeadID, Error: a.Err.Error()})
	}

	if m.gen != s.gen {
		// The run this call belonged to was cancelled. Its lead status has landed; counters stay reset.
		s.emitAttempt(a)
		s.drain()
		return
	}

	s.queue = s.queue[1:]
	s.state.CurrentIndex++
	s.emitAttempt(a)

	if len(s.queue) == 0 {
		s.complete()
		return
	}
	if !s.state.Paused {
		s.schedule()
	}
}

func (s *Sequencer) complete() {
	s.stopTimer()
	s.queue = nil
	s.state.InProgress = false
	s.state.Paused = false

	s.caller.Metrics.BulkFinished("completed")
	s.caller.logger().Info("bulk run completed", "processed", s.state.CurrentIndex)
	s.caller.Notify.Info("Bulk call completed",
		fmt.Sprintf("Successfully completed all %d calls.", s.state.CurrentIndex))
	s.emit(Event{Type: EventCompleted})
}

func (s *Sequencer) schedule() {
	s.stopTimer()
	seq := s.tickSeq
	s.timer = s.clock.AfterFunc(s.timeframe, func() {
		select {
		case s.msgs <- tick{seq: seq}:
		case <-s.done:
		}
	})
}

// stopTimer cancels the pending continuation and invalidates a tick that already fired.
func (s *Sequencer) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.tickSeq++
}

func (s *Sequencer) onTick(t tick) {
	if t.seq != s.tickSeq || s.timer == nil {
		return
	}
	s.timer = nil
	s.drain()
}

func (s *Sequencer) emitAttempt(a Attempt) {
	e := Event{Type: EventCallPlaced, LeadID: a.LeadID, CallID: a.CallID}
	if a.Err != nil {
		e.Type = EventCallFailed
		e.Error = a.Err.Error()
	}
	s.emit(e)
}

func (s *Sequencer) emit(e Event) {
	e.State = s.snapshot()
	s.subsMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn(e)
	}
}

func (s *Sequencer) snapshot() State {
	st := s.state
	st.Queued = make([]string, 0, len(s.queue))
	for _, l := range s.queue {
		st.Queued = append(st.Queued, l.ID)
	}
	return st
}
