// Package wizard walks a user through RSA key generation, encryption and
// decryption one validated step at a time.
package wizard

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/udisondev/rsaviz/internal/rsakey"
	"github.com/udisondev/rsaviz/internal/stepper"
)

// InvalidInputMessage is shown for every rejected step.
const InvalidInputMessage = "Invalid input. Please check and try again."

var (
	ErrInvalidNumber = errors.New("not an integer")
	ErrEmptyMessage  = errors.New("message is empty")
)

// View is the display data for the current page.
type View struct {
	Index       int
	Total       int
	Title       string
	Description string
	Input       bool   // the page takes free text input
	Placeholder string // input hint
	Value       string // current input text
	Lines       []string
	CanPrevious bool
	CanNext     bool
}

type page struct {
	title       string
	description string
	placeholder string // non-empty for input pages
	lines       func() []string
	validate    func() error
	commit      func()
	committed   func() string // value to restore on revisit
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithKeyHook is called, outside of any lock, after the key is (re)derived.
func WithKeyHook(fn func(rsakey.KeyMaterial)) Option {
	return func(w *Wizard) { w.onKey = fn }
}

// Wizard holds the values committed so far and the page cursor.
type Wizard struct {
	mu      sync.Mutex
	machine *stepper.Machine
	pages   []page
	onKey   func(rsakey.KeyMaterial)

	input      string
	p, q       int64
	key        rsakey.KeyMaterial
	hasKey     bool
	keyPending bool
	message    string
	cipherHex  string
}

// New builds the eight-page RSA wizard.
func New(opts ...Option) *Wizard {
	w := &Wizard{}
	for _, opt := range opts {
		opt(w)
	}
	w.pages = w.buildPages()

	// the last page has nothing to advance to
	steps := make(stepper.Steps, len(w.pages)-1)
	for i := range steps {
		pg := w.pages[i]
		steps[i] = stepper.Funcs{ValidateFunc: w.locked(pg.validate), CommitFunc: w.lockedCommit(pg.commit)}
	}
	w.machine = stepper.New(steps, stepper.WithName("wizard"))
	return w
}

// SetInput replaces the text typed on the current page.
func (w *Wizard) SetInput(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = s
}

// Next validates and commits the current page and moves forward.
func (w *Wizard) Next() error {
	if err := w.machine.Next(); err != nil {
		return err
	}
	w.restoreInput(w.machine.Cursor())

	w.mu.Lock()
	notify := w.keyPending && w.onKey != nil
	w.keyPending = false
	key := w.key
	w.mu.Unlock()

	if notify {
		w.onKey(key)
	}
	return nil
}

// Previous moves back and restores the value committed on that page.
func (w *Wizard) Previous() bool {
	if !w.machine.Previous() {
		return false
	}
	w.restoreInput(w.machine.Cursor())
	return true
}

// Reset returns to the first page, keeping committed values.
func (w *Wizard) Reset() {
	w.machine.Reset()
	w.restoreInput(0)
}

// Key returns the derived key once the exponent page was committed.
func (w *Wizard) Key() (rsakey.KeyMaterial, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.key, w.hasKey
}

// View renders the current page.
func (w *Wizard) View() View {
	s := w.machine.State()
	pg := w.pages[s.Cursor]

	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Index:       s.Cursor,
		Total:       len(w.pages),
		Title:       pg.title,
		Description: pg.description,
		Input:       pg.placeholder != "",
		Placeholder: pg.placeholder,
		Value:       w.input,
		CanPrevious: !s.AtStart(),
		CanNext:     !s.AtEnd(),
	}
	if pg.lines != nil {
		v.Lines = pg.lines()
	}
	return v
}

// Close releases the underlying stepper.
func (w *Wizard) Close() {
	w.machine.Close()
}

func (w *Wizard) restoreInput(cursor int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = ""
	if c := w.pages[cursor].committed; c != nil {
		w.input = c()
	}
}

func (w *Wizard) locked(fn func() error) func() error {
	if fn == nil {
		return nil
	}
	return func() error {
		w.mu.Lock()
		defer w.mu.Unlock()
		return fn()
	}
}

func (w *Wizard) lockedCommit(fn func()) func() {
	if fn == nil {
		return nil
	}
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		fn()
	}
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidNumber)
	}
	return v, nil
}

func intOrEmpty(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

// commitKey derives the key from the committed primes and e.
func (w *Wizard) commitKey(e int64) {
	key, err := rsakey.New(w.p, w.q, e)
	if err != nil {
		slog.Error("deriving key after validation", "p", w.p, "q", w.q, "e", e, "err", err)
		return
	}
	w.key = key
	w.hasKey = true
	w.keyPending = true
	slog.Debug("key derived", "key", key)
}

// dropStaleKey forgets a key derived from primes that were since changed.
// The exponent page has to be committed again.
func (w *Wizard) dropStaleKey() {
	if !w.hasKey || (w.key.P == w.p && w.key.Q == w.q) {
		return
	}
	slog.Debug("key invalidated by new primes", "p", w.p, "q", w.q)
	w.hasKey = false
	w.keyPending = false
}
