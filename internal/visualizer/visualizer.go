// Package visualizer animates the plaintext -> ciphertext mapping of an RSA key
// over a range of messages.
package visualizer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/rsaviz/internal/mapping"
	"github.com/udisondev/rsaviz/internal/rsakey"
	"github.com/udisondev/rsaviz/internal/stepper"
)

// Params are the user-editable inputs. Any change recomputes everything.
type Params struct {
	P            int64
	Q            int64
	E            int64
	MessageStart int64
	MessageEnd   int64
}

// Range returns the message range.
func (p Params) Range() mapping.Range {
	return mapping.Range{Start: p.MessageStart, End: p.MessageEnd}
}

// Snapshot is a consistent view of one visualizer state.
// Entries is shared and must be treated as read-only.
type Snapshot struct {
	Params  Params
	Key     rsakey.KeyMaterial
	Entries []mapping.Entry
	State   stepper.State
}

// Revealed returns the entries uncovered so far.
func (s Snapshot) Revealed() []mapping.Entry {
	return s.Entries[:s.State.Cursor]
}

// Option configures a Visualizer.
type Option func(*options)

type options struct {
	maxRange int
	tickUnit time.Duration
	observer stepper.Observer
	onKey    func(rsakey.KeyMaterial)
}

// WithMaxRange limits the number of messages in a range.
func WithMaxRange(n int) Option {
	return func(o *options) { o.maxRange = n }
}

// WithTickUnit sets the duration of one playback speed unit.
func WithTickUnit(d time.Duration) Option {
	return func(o *options) { o.tickUnit = d }
}

// WithObserver receives playback events.
func WithObserver(fn stepper.Observer) Option {
	return func(o *options) { o.observer = fn }
}

// WithKeyHook is called after every successful key derivation.
func WithKeyHook(fn func(rsakey.KeyMaterial)) Option {
	return func(o *options) { o.onKey = fn }
}

// Visualizer owns one key, its mapping and the reveal cursor.
// All three are guarded by the stepper's lock.
type Visualizer struct {
	opts    options
	machine *stepper.Machine

	params  Params
	key     rsakey.KeyMaterial
	entries []mapping.Entry
}

// New derives the key and mapping for p.
func New(p Params, opts ...Option) (*Visualizer, error) {
	v := &Visualizer{opts: options{maxRange: mapping.DefaultMaxRange, tickUnit: time.Millisecond}}
	for _, opt := range opts {
		opt(&v.opts)
	}

	key, entries, err := v.derive(p)
	if err != nil {
		return nil, err
	}
	v.params, v.key, v.entries = p, key, entries

	v.machine = stepper.New(stepper.Count(len(entries)),
		stepper.WithName("visualizer"),
		stepper.WithTickUnit(v.opts.tickUnit),
		stepper.WithObserver(v.opts.observer),
	)

	if v.opts.onKey != nil {
		v.opts.onKey(key)
	}
	return v, nil
}

// SetParams cancels playback, recomputes the key and mapping and rewinds to 0
// as one transition. Invalid params leave the visualizer unchanged.
func (v *Visualizer) SetParams(p Params) error {
	key, entries, err := v.derive(p)
	if err != nil {
		return err
	}

	err = v.machine.Rebind(stepper.Count(len(entries)), func() {
		v.params, v.key, v.entries = p, key, entries
	})
	if err != nil {
		return err
	}

	slog.Info("visualizer parameters changed", "key", key, "from", p.MessageStart, "to", p.MessageEnd)
	if v.opts.onKey != nil {
		v.opts.onKey(key)
	}
	return nil
}

func (v *Visualizer) derive(p Params) (rsakey.KeyMaterial, []mapping.Entry, error) {
	key, err := rsakey.New(p.P, p.Q, p.E)
	if err != nil {
		return rsakey.KeyMaterial{}, nil, fmt.Errorf("deriving key: %w", err)
	}
	entries, err := mapping.Generate(key, p.Range(), v.opts.maxRange)
	if err != nil {
		return rsakey.KeyMaterial{}, nil, fmt.Errorf("generating mapping: %w", err)
	}
	return key, entries, nil
}

// Snapshot returns params, key, entries and cursor observed together.
func (v *Visualizer) Snapshot() Snapshot {
	var s Snapshot
	v.machine.Inspect(func(st stepper.State) {
		s = Snapshot{Params: v.params, Key: v.key, Entries: v.entries, State: st}
	})
	return s
}

// Project lays out the current snapshot.
func (v *Visualizer) Project(mode mapping.Mode, c mapping.Canvas) mapping.Projection {
	s := v.Snapshot()
	return mapping.Project(mode, c, s.Params.Range(), s.Revealed())
}

// Next reveals one more connection.
func (v *Visualizer) Next() error { return v.machine.Next() }

// Previous hides the last revealed connection.
func (v *Visualizer) Previous() bool { return v.machine.Previous() }

// Reset hides every connection.
func (v *Visualizer) Reset() { v.machine.Reset() }

// Play reveals connections automatically until the end.
func (v *Visualizer) Play(speed int) error { return v.machine.Play(speed) }

// Pause stops automatic reveal.
func (v *Visualizer) Pause() bool { return v.machine.Pause() }

// Toggle switches between playing and paused.
func (v *Visualizer) Toggle() error { return v.machine.Toggle() }

// SetSpeed changes playback speed.
func (v *Visualizer) SetSpeed(speed int) error { return v.machine.SetSpeed(speed) }

// Close stops playback and releases the ticker.
func (v *Visualizer) Close() { v.machine.Close() }
