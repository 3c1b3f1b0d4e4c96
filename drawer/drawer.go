// Package drawer implements the settings drawer navigator: a state
// machine over Closed/Opening/Open/Closing that drives the two-track
// entrance and exit animation of a settings section. The root list
// translates and fades over the transition duration while the active
// section's items fade in with a fixed per-item stagger.
//
// All choreography runs through a single Clock; each transition owns its
// timers and cancels them when interrupted, so rapid toggling reverses
// the animation in place instead of queuing sequences behind each other.
package drawer

import (
	"sync"
	"time"
)

// State is the navigator's position in the open/close lifecycle.
type State int

const (
	// StateClosed shows the root section list.
	StateClosed State = iota
	// StateOpening is an entrance transition in flight.
	StateOpening
	// StateOpen shows one expanded section.
	StateOpen
	// StateClosing is an exit transition in flight.
	StateClosing
)

var stateNames = map[State]string{
	StateClosed:  "closed",
	StateOpening: "opening",
	StateOpen:    "open",
	StateClosing: "closing",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Timing holds the durations of the animation tracks.
type Timing struct {
	// OpenDuration and CloseDuration bound the root list translate/fade
	// track; the transition commits when they elapse.
	OpenDuration  time.Duration
	CloseDuration time.Duration
	// BaseDelay is the lead-in before the first item appears; ItemStagger
	// separates consecutive items. Item i becomes visible no earlier than
	// BaseDelay + i*ItemStagger after the entrance starts.
	BaseDelay   time.Duration
	ItemStagger time.Duration
}

// DefaultTiming mirrors the client's drawer choreography.
func DefaultTiming() Timing {
	return Timing{
		OpenDuration:  280 * time.Millisecond,
		CloseDuration: 220 * time.Millisecond,
		BaseDelay:     80 * time.Millisecond,
		ItemStagger:   40 * time.Millisecond,
	}
}

// transition owns the timers of one in-flight animation sequence. seq
// identifies the generation; timer callbacks from an older generation
// are ignored even if they fire after cancellation.
type transition struct {
	seq    int
	timers []Timer
}

// NavOption configures a Navigator.
type NavOption func(*Navigator)

// WithClock overrides the system clock, typically with a fake in tests.
func WithClock(c Clock) NavOption {
	return func(n *Navigator) {
		n.clock = c
	}
}

// WithFeedback sets the haptic port signalled on committed transitions.
func WithFeedback(f FeedbackPort) NavOption {
	return func(n *Navigator) {
		n.feedback = f
	}
}

// WithTiming overrides the animation timing.
func WithTiming(t Timing) NavOption {
	return func(n *Navigator) {
		n.timing = t
	}
}

// OnStateChange registers a hook invoked (under no lock) after every
// state change, committed or in-flight.
func OnStateChange(fn func(state State, section string)) NavOption {
	return func(n *Navigator) {
		n.onState = fn
	}
}

// OnItemVisible registers a hook invoked when a staggered item becomes
// visible during an entrance.
func OnItemVisible(fn func(section string, index int)) NavOption {
	return func(n *Navigator) {
		n.onItem = fn
	}
}

// Navigator is the drawer state machine. All methods are safe for
// concurrent use; hooks are invoked without the internal lock held.
type Navigator struct {
	mu       sync.Mutex
	clock    Clock
	feedback FeedbackPort
	timing   Timing
	onState  func(State, string)
	onItem   func(string, int)

	state   State
	active  string
	items   int
	visible []bool
	seq     int
	current *transition
}

// NewNavigator creates a Navigator in StateClosed.
func NewNavigator(opts ...NavOption) *Navigator {
	n := &Navigator{
		clock:    SystemClock(),
		feedback: NopFeedback{},
		timing:   DefaultTiming(),
		state:    StateClosed,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// State returns the current state and the active section id. The section
// is empty when the drawer is closed or closing.
func (n *Navigator) State() (State, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state, n.active
}

// ItemVisible reports whether staggered item i of the active section has
// appeared yet.
func (n *Navigator) ItemVisible(i int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return i >= 0 && i < len(n.visible) && n.visible[i]
}

// ItemAppearDelay returns the earliest offset from the start of an
// entrance at which item i becomes visible.
func (n *Navigator) ItemAppearDelay(i int) time.Duration {
	return n.timing.BaseDelay + time.Duration(i)*n.timing.ItemStagger
}

// Open requests the drawer to show section with the given number of
// staggered items.
//
//   - From Closed or Closing: any in-flight exit is cancelled and a full
//     entrance sequence starts.
//   - While Open on another section: the active section is swapped in
//     place and only the item stagger restarts. The drawer never passes
//     through a visible Closed frame; this avoids the flash a full
//     close/open round trip would produce.
//   - While Opening: the in-flight entrance is retargeted at the new
//     section.
//
// Opening the already-active section is a no-op.
func (n *Navigator) Open(section string, items int) {
	n.mu.Lock()

	if (n.state == StateOpen || n.state == StateOpening) && n.active == section {
		n.mu.Unlock()
		return
	}

	switch n.state {
	case StateOpen:
		// Re-entrant switch: swap the section while staying Open.
		n.cancelLocked()
		n.active = section
		n.items = items
		n.visible = make([]bool, items)
		n.scheduleItemsLocked()
		n.mu.Unlock()
		n.feedback.Trigger(FeedbackLight)
		n.notifyState(StateOpen, section)
		return
	case StateClosed, StateClosing, StateOpening:
		n.cancelLocked()
		n.state = StateOpening
		n.active = section
		n.items = items
		n.visible = make([]bool, items)
		n.scheduleItemsLocked()
		n.scheduleSettleLocked(n.timing.OpenDuration, StateOpen)
		n.mu.Unlock()
		n.notifyState(StateOpening, section)
	}
}

// Close requests the drawer to return to the root list. An in-flight
// entrance is cancelled immediately and the exit sequence starts from
// wherever the animation currently is; nothing is queued behind it.
// Closing while already Closed or Closing is a no-op.
func (n *Navigator) Close() {
	n.mu.Lock()

	switch n.state {
	case StateClosed, StateClosing:
		n.mu.Unlock()
		return
	case StateOpen, StateOpening:
		n.cancelLocked()
		n.state = StateClosing
		n.visible = nil
		n.scheduleSettleLocked(n.timing.CloseDuration, StateClosed)
		section := n.active
		n.mu.Unlock()
		n.notifyState(StateClosing, section)
	}
}

// Dismiss resets the navigator to Closed without an exit animation, for
// example when the containing modal is torn down.
func (n *Navigator) Dismiss() {
	n.mu.Lock()
	n.cancelLocked()
	n.state = StateClosed
	n.active = ""
	n.items = 0
	n.visible = nil
	n.mu.Unlock()
	n.notifyState(StateClosed, "")
}

// scheduleSettleLocked arms the commit timer of the current transition.
// Caller holds n.mu.
func (n *Navigator) scheduleSettleLocked(after time.Duration, target State) {
	tr := n.currentLocked()
	seq := tr.seq
	timer := n.clock.AfterFunc(after, func() {
		n.settle(seq, target)
	})
	tr.timers = append(tr.timers, timer)
}

// scheduleItemsLocked arms the per-item stagger timers. Caller holds n.mu.
func (n *Navigator) scheduleItemsLocked() {
	tr := n.currentLocked()
	seq := tr.seq
	for i := 0; i < n.items; i++ {
		index := i
		timer := n.clock.AfterFunc(n.ItemAppearDelay(i), func() {
			n.revealItem(seq, index)
		})
		tr.timers = append(tr.timers, timer)
	}
}

// currentLocked returns the transition for the current generation,
// creating it if the generation just advanced. Caller holds n.mu.
func (n *Navigator) currentLocked() *transition {
	if n.current == nil || n.current.seq != n.seq {
		n.current = &transition{seq: n.seq}
	}
	return n.current
}

// cancelLocked stops every timer of the in-flight transition and bumps
// the generation so late callbacks become no-ops. Caller holds n.mu.
func (n *Navigator) cancelLocked() {
	if n.current != nil {
		for _, t := range n.current.timers {
			t.Stop()
		}
		n.current = nil
	}
	n.seq++
}

// settle commits an in-flight transition. Stale generations are dropped:
// a timer that fired between cancellation and callback must not flip the
// state after the navigator has already moved on.
func (n *Navigator) settle(seq int, target State) {
	n.mu.Lock()
	if seq != n.seq {
		n.mu.Unlock()
		return
	}
	n.state = target
	section := n.active
	if target == StateClosed {
		n.active = ""
		n.items = 0
		n.visible = nil
		section = ""
	}
	n.mu.Unlock()

	// Haptics fire on committed transitions only, never mid-flight.
	n.feedback.Trigger(FeedbackLight)
	n.notifyState(target, section)
}

func (n *Navigator) revealItem(seq, index int) {
	n.mu.Lock()
	if seq != n.seq || index >= len(n.visible) {
		n.mu.Unlock()
		return
	}
	n.visible[index] = true
	section := n.active
	n.mu.Unlock()

	if n.onItem != nil {
		n.onItem(section, index)
	}
}

func (n *Navigator) notifyState(state State, section string) {
	if n.onState != nil {
		n.onState(state, section)
	}
}
