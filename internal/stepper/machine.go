package stepper

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	MinSpeed     = 1
	MaxSpeed     = 100
	DefaultSpeed = 50
)

var (
	ErrAtEnd        = errors.New("already at the last step")
	ErrInvalidSpeed = errors.New("speed must be within [1, 100]")
	ErrClosed       = errors.New("stepper is closed")
)

// Interval returns the tick period for speed: (100 - speed) units, at least one.
func Interval(speed int, unit time.Duration) time.Duration {
	return time.Duration(max(MaxSpeed-speed, 1)) * unit
}

// State is a point-in-time view of a Machine.
type State struct {
	Cursor  int
	Len     int
	Playing bool
	Speed   int

	Generation uint64 // bumped by Rebind
}

// AtStart reports whether there is nothing to go back to.
func (s State) AtStart() bool { return s.Cursor == 0 }

// AtEnd reports whether there is nothing left to advance.
func (s State) AtEnd() bool { return s.Cursor >= s.Len }

// Option configures a Machine.
type Option func(*Machine)

// WithTickUnit sets the duration of one speed unit (default 1ms).
func WithTickUnit(unit time.Duration) Option {
	return func(m *Machine) {
		if unit > 0 {
			m.tickUnit = unit
		}
	}
}

// WithObserver installs an event observer.
func WithObserver(fn Observer) Option {
	return func(m *Machine) { m.observer = fn }
}

// WithName sets the name used in log records.
func WithName(name string) Option {
	return func(m *Machine) { m.name = name }
}

// Machine owns a cursor in [0, Len] over a Sequence and at most one playback ticker.
type Machine struct {
	mu       sync.Mutex
	name     string
	seq      Sequence
	cursor   int
	speed    int
	tickUnit time.Duration
	observer Observer
	player   *player
	gen      uint64
	closed   bool
}

// player is the handle of one running ticker goroutine.
type player struct {
	speed int
	stop  chan struct{}
	done  chan struct{}
}

// New creates a Machine at cursor 0.
func New(seq Sequence, opts ...Option) *Machine {
	m := &Machine{
		name:     "stepper",
		seq:      seq,
		speed:    DefaultSpeed,
		tickUnit: time.Millisecond,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Cursor returns the current position.
func (m *Machine) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Inspect runs fn with the machine locked, so data swapped in by Rebind and the
// cursor are observed together. fn must not call back into the machine.
func (m *Machine) Inspect(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.stateLocked())
}

// Next validates the current step, commits it and advances by one.
// A failed validation leaves the machine untouched and is returned.
func (m *Machine) Next() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	events, err := m.advanceLocked()
	m.mu.Unlock()

	m.emit(events...)
	return err
}

// Previous moves back one step without re-validating or re-committing.
// It reports whether the cursor moved.
func (m *Machine) Previous() bool {
	m.mu.Lock()
	if m.closed || m.cursor == 0 {
		m.mu.Unlock()
		return false
	}
	m.cursor--
	ev := m.eventLocked(EventRetreated)
	m.mu.Unlock()

	m.emit(ev)
	return true
}

// Reset moves the cursor to 0. A running playback keeps running from there.
func (m *Machine) Reset() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.cursor = 0
	ev := m.eventLocked(EventReset)
	m.mu.Unlock()

	m.emit(ev)
}

// Play starts advancing once per Interval(speed). Playing at the same speed is
// a no-op; a different speed replaces the running ticker.
func (m *Machine) Play(speed int) error {
	if speed < MinSpeed || speed > MaxSpeed {
		return fmt.Errorf("speed %d: %w", speed, ErrInvalidSpeed)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.cursor >= m.seq.Len() {
		m.mu.Unlock()
		return ErrAtEnd
	}
	m.speed = speed
	if m.player != nil {
		if m.player.speed == speed {
			m.mu.Unlock()
			return nil
		}
		m.stopLocked()
	}
	m.startLocked()
	ev := m.eventLocked(EventPlaying)
	m.mu.Unlock()

	m.emit(ev)
	return nil
}

// SetSpeed changes the speed, restarting the ticker if it is running.
func (m *Machine) SetSpeed(speed int) error {
	if speed < MinSpeed || speed > MaxSpeed {
		return fmt.Errorf("speed %d: %w", speed, ErrInvalidSpeed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.speed = speed
	if m.player != nil && m.player.speed != speed {
		m.stopLocked()
		m.startLocked()
	}
	return nil
}

// Pause stops the ticker without touching the cursor. A tick already waiting
// for the lock is discarded. It reports whether playback was running.
func (m *Machine) Pause() bool {
	m.mu.Lock()
	if m.player == nil {
		m.mu.Unlock()
		return false
	}
	m.stopLocked()
	ev := m.eventLocked(EventPaused)
	m.mu.Unlock()

	m.emit(ev)
	return true
}

// Toggle pauses a running playback or starts one at the current speed.
func (m *Machine) Toggle() error {
	if m.Pause() {
		return nil
	}
	return m.Play(m.State().Speed)
}

// Rebind stops playback, swaps the sequence and resets the cursor in one step.
// fn, if not nil, runs under the machine lock before the swap so callers can
// replace the data the sequence is built on within the same transition.
func (m *Machine) Rebind(seq Sequence, fn func()) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	var events []Event
	if m.player != nil {
		m.stopLocked()
		events = append(events, m.eventLocked(EventPaused))
	}
	if fn != nil {
		fn()
	}
	m.seq = seq
	m.cursor = 0
	m.gen++
	events = append(events, m.eventLocked(EventRebound))
	m.mu.Unlock()

	m.emit(events...)
	return nil
}

// Close stops playback and waits for the ticker goroutine to exit.
// Every later call is a no-op or returns ErrClosed.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	p := m.player
	m.stopLocked()
	m.mu.Unlock()

	if p != nil {
		<-p.done
	}
}

func (m *Machine) stateLocked() State {
	return State{
		Cursor:  m.cursor,
		Len:     m.seq.Len(),
		Playing: m.player != nil,
		Speed:   m.speed,

		Generation: m.gen,
	}
}

func (m *Machine) eventLocked(kind EventKind) Event {
	return Event{Kind: kind, Cursor: m.cursor, Generation: m.gen}
}

func (m *Machine) advanceLocked() ([]Event, error) {
	if m.cursor >= m.seq.Len() {
		return nil, ErrAtEnd
	}

	step := m.seq.Step(m.cursor)
	if err := step.Validate(); err != nil {
		slog.Warn("step rejected", "machine", m.name, "cursor", m.cursor, "err", err)
		ev := m.eventLocked(EventRejected)
		ev.Err = err
		return []Event{ev}, fmt.Errorf("step %d: %w", m.cursor, err)
	}
	step.Commit()
	m.cursor++

	events := []Event{m.eventLocked(EventAdvanced)}
	if m.cursor == m.seq.Len() && m.player != nil {
		m.stopLocked()
		events = append(events, m.eventLocked(EventCompleted))
	}
	return events, nil
}

func (m *Machine) startLocked() {
	p := &player{
		speed: m.speed,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	m.player = p
	interval := Interval(p.speed, m.tickUnit)

	slog.Info("playback started", "machine", m.name, "speed", p.speed, "interval", interval, "cursor", m.cursor)
	go m.run(p, interval)
}

func (m *Machine) stopLocked() {
	if m.player == nil {
		return
	}
	close(m.player.stop)
	m.player = nil
	slog.Info("playback stopped", "machine", m.name, "cursor", m.cursor)
}

// run ticks until its player is stopped.
func (m *Machine) run(p *player, interval time.Duration) {
	defer close(p.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if !m.tick(p) {
				return
			}
		}
	}
}

// tick advances once on behalf of p. It returns false once p is no longer current.
func (m *Machine) tick(p *player) bool {
	m.mu.Lock()
	if m.player != p {
		m.mu.Unlock()
		return false
	}

	events, err := m.advanceLocked()
	if err != nil {
		m.stopLocked()
		events = append(events, m.eventLocked(EventPaused))
	}
	alive := m.player == p
	m.mu.Unlock()

	m.emit(events...)
	return alive
}

func (m *Machine) emit(events ...Event) {
	if m.observer == nil {
		return
	}
	for _, ev := range events {
		m.observer(ev)
	}
}
