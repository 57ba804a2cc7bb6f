package stepper

// EventKind identifies a machine transition.
type EventKind int

const (
	EventAdvanced  EventKind = iota // cursor moved forward
	EventRetreated                  // cursor moved back
	EventReset                      // cursor set to 0
	EventRejected                   // validation failed, nothing changed
	EventPlaying                    // ticker started
	EventPaused                     // ticker stopped without reaching the end
	EventCompleted                  // cursor reached the end while playing
	EventRebound                    // sequence replaced, cursor 0
)

func (k EventKind) String() string {
	switch k {
	case EventAdvanced:
		return "ADVANCED"
	case EventRetreated:
		return "RETREATED"
	case EventReset:
		return "RESET"
	case EventRejected:
		return "REJECTED"
	case EventPlaying:
		return "PLAYING"
	case EventPaused:
		return "PAUSED"
	case EventCompleted:
		return "COMPLETED"
	case EventRebound:
		return "REBOUND"
	default:
		return "UNKNOWN"
	}
}

// Event is delivered to the observer after the machine lock is released.
// Generation is the sequence generation the event was produced under; Rebind
// starts a new one.
type Event struct {
	Kind       EventKind
	Cursor     int
	Generation uint64
	Err        error // EventRejected only
}

// Observer receives events. It may be called from the playback goroutine and
// must not block.
//
// Events of one goroutine arrive in order, but a tick racing with Rebind may
// deliver its EventAdvanced after EventRebound. Such an event carries the old
// Generation; compare it with State.Generation before using Cursor.
type Observer func(Event)
