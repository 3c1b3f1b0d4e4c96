package drawer

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock drives timers manually so animation sequences run
// deterministically. Advance fires due callbacks in time order with the
// clock's lock released, matching how time.AfterFunc delivers.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.when
		next.fired = true
		f := next.f
		c.mu.Unlock()
		f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// countingFeedback records every haptic trigger.
type countingFeedback struct {
	kinds []Feedback
}

func (c *countingFeedback) Trigger(kind Feedback) {
	c.kinds = append(c.kinds, kind)
}

// stateRecord captures the hook stream for frame assertions.
type stateRecord struct {
	state   State
	section string
}

func newTestNavigator(opts ...NavOption) (*Navigator, *fakeClock, *countingFeedback, *[]stateRecord) {
	clock := newFakeClock()
	feedback := &countingFeedback{}
	records := &[]stateRecord{}
	base := []NavOption{
		WithClock(clock),
		WithFeedback(feedback),
		OnStateChange(func(state State, section string) {
			*records = append(*records, stateRecord{state, section})
		}),
	}
	return NewNavigator(append(base, opts...)...), clock, feedback, records
}

func TestNavigator_OpenCommits(t *testing.T) {
	nav, clock, feedback, _ := newTestNavigator()

	nav.Open("appearance", 2)
	if state, section := nav.State(); state != StateOpening || section != "appearance" {
		t.Fatalf("Expected opening/appearance, got %v/%q", state, section)
	}
	if len(feedback.kinds) != 0 {
		t.Error("Feedback must not fire before the transition commits")
	}

	clock.Advance(DefaultTiming().OpenDuration)
	if state, _ := nav.State(); state != StateOpen {
		t.Fatalf("Expected open after %v, got %v", DefaultTiming().OpenDuration, state)
	}
	if len(feedback.kinds) != 1 {
		t.Errorf("Expected exactly one haptic on commit, got %d", len(feedback.kinds))
	}
}

func TestNavigator_ItemStagger(t *testing.T) {
	nav, clock, _, _ := newTestNavigator()
	timing := DefaultTiming()

	nav.Open("notifications", 3)

	for i := 0; i < 3; i++ {
		if nav.ItemVisible(i) {
			t.Errorf("Item %d visible before any time passed", i)
		}
	}

	// Just before the first item's delay nothing is visible.
	clock.Advance(timing.BaseDelay - time.Millisecond)
	if nav.ItemVisible(0) {
		t.Error("Item 0 visible before base delay")
	}

	// Each subsequent stagger step reveals exactly one more item.
	clock.Advance(time.Millisecond)
	for i := 1; i < 3; i++ {
		if nav.ItemVisible(i) {
			t.Errorf("Item %d visible before its stagger delay", i)
		}
		clock.Advance(timing.ItemStagger)
	}
	for i := 0; i < 3; i++ {
		if !nav.ItemVisible(i) {
			t.Errorf("Item %d not visible after its stagger delay", i)
		}
	}
}

func TestNavigator_ItemAppearDelay(t *testing.T) {
	nav := NewNavigator(WithTiming(Timing{
		OpenDuration:  100 * time.Millisecond,
		CloseDuration: 100 * time.Millisecond,
		BaseDelay:     80 * time.Millisecond,
		ItemStagger:   40 * time.Millisecond,
	}))

	for i, want := range []time.Duration{
		80 * time.Millisecond,
		120 * time.Millisecond,
		160 * time.Millisecond,
	} {
		if got := nav.ItemAppearDelay(i); got != want {
			t.Errorf("ItemAppearDelay(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestNavigator_CloseCancelsOpening(t *testing.T) {
	nav, clock, feedback, _ := newTestNavigator()
	timing := DefaultTiming()

	nav.Open("privacy", 4)
	clock.Advance(timing.OpenDuration / 2)

	nav.Close()
	if state, _ := nav.State(); state != StateClosing {
		t.Fatalf("Expected closing, got %v", state)
	}

	clock.Advance(timing.CloseDuration)
	if state, section := nav.State(); state != StateClosed || section != "" {
		t.Fatalf("Expected closed with no section, got %v/%q", state, section)
	}

	// The cancelled entrance must leave no residual timers behind: running
	// the clock far forward must not flip the state or reveal items.
	clock.Advance(10 * time.Second)
	if state, _ := nav.State(); state != StateClosed {
		t.Errorf("Residual timer flipped state to %v", state)
	}
	if nav.ItemVisible(0) {
		t.Error("Residual stagger timer revealed an item after close")
	}
	if len(feedback.kinds) != 1 {
		t.Errorf("Expected one haptic (close commit only), got %d", len(feedback.kinds))
	}
}

func TestNavigator_ReentrantSwitchSkipsClosedFrame(t *testing.T) {
	nav, clock, feedback, records := newTestNavigator()
	timing := DefaultTiming()

	nav.Open("appearance", 2)
	clock.Advance(timing.OpenDuration)
	if state, _ := nav.State(); state != StateOpen {
		t.Fatalf("Expected open, got %v", state)
	}

	*records = nil
	feedback.kinds = nil

	nav.Open("privacy", 3)
	if state, section := nav.State(); state != StateOpen || section != "privacy" {
		t.Fatalf("Expected open/privacy, got %v/%q", state, section)
	}

	for _, rec := range *records {
		if rec.state == StateClosed || rec.state == StateClosing {
			t.Errorf("Section switch passed through %v frame", rec.state)
		}
	}
	if len(feedback.kinds) != 1 {
		t.Errorf("Expected one haptic for the switch, got %d", len(feedback.kinds))
	}

	// Only the item stagger restarts.
	if nav.ItemVisible(0) {
		t.Error("Items visible before the restarted stagger")
	}
	clock.Advance(timing.BaseDelay + 2*timing.ItemStagger)
	for i := 0; i < 3; i++ {
		if !nav.ItemVisible(i) {
			t.Errorf("Item %d not visible after restarted stagger", i)
		}
	}
}

func TestNavigator_RetargetWhileOpening(t *testing.T) {
	nav, clock, _, records := newTestNavigator()
	timing := DefaultTiming()

	nav.Open("appearance", 2)
	clock.Advance(timing.OpenDuration / 2)

	nav.Open("privacy", 1)
	if state, section := nav.State(); state != StateOpening || section != "privacy" {
		t.Fatalf("Expected opening/privacy, got %v/%q", state, section)
	}

	clock.Advance(timing.OpenDuration)
	if state, section := nav.State(); state != StateOpen || section != "privacy" {
		t.Fatalf("Expected open/privacy, got %v/%q", state, section)
	}

	for _, rec := range *records {
		if rec.state == StateOpen && rec.section == "appearance" {
			t.Error("Abandoned entrance committed the old section")
		}
	}
}

func TestNavigator_OpenWhileClosing(t *testing.T) {
	nav, clock, _, _ := newTestNavigator()
	timing := DefaultTiming()

	nav.Open("appearance", 2)
	clock.Advance(timing.OpenDuration)
	nav.Close()
	clock.Advance(timing.CloseDuration / 2)

	nav.Open("spotify", 1)
	if state, section := nav.State(); state != StateOpening || section != "spotify" {
		t.Fatalf("Expected opening/spotify, got %v/%q", state, section)
	}

	clock.Advance(timing.OpenDuration)
	if state, section := nav.State(); state != StateOpen || section != "spotify" {
		t.Fatalf("Expected open/spotify, got %v/%q", state, section)
	}

	// The abandoned exit must never commit.
	clock.Advance(10 * time.Second)
	if state, _ := nav.State(); state != StateOpen {
		t.Errorf("Cancelled exit flipped state to %v", state)
	}
}

func TestNavigator_OpenActiveSectionIsNoOp(t *testing.T) {
	nav, clock, feedback, records := newTestNavigator()
	timing := DefaultTiming()

	nav.Open("account", 2)
	clock.Advance(timing.OpenDuration + timing.BaseDelay + 2*timing.ItemStagger)

	*records = nil
	feedback.kinds = nil

	nav.Open("account", 2)
	if len(*records) != 0 || len(feedback.kinds) != 0 {
		t.Error("Reopening the active section must not restart anything")
	}
	if !nav.ItemVisible(0) || !nav.ItemVisible(1) {
		t.Error("Reopening the active section must not hide items")
	}
}

func TestNavigator_Dismiss(t *testing.T) {
	nav, clock, _, _ := newTestNavigator()
	timing := DefaultTiming()

	nav.Open("appearance", 3)
	clock.Advance(timing.OpenDuration / 2)

	nav.Dismiss()
	if state, section := nav.State(); state != StateClosed || section != "" {
		t.Fatalf("Expected closed immediately, got %v/%q", state, section)
	}

	clock.Advance(10 * time.Second)
	if state, _ := nav.State(); state != StateClosed {
		t.Error("Residual timer fired after dismiss")
	}
}

func TestNavigator_CloseWhenClosedIsNoOp(t *testing.T) {
	nav, _, feedback, records := newTestNavigator()

	nav.Close()
	if len(*records) != 0 || len(feedback.kinds) != 0 {
		t.Error("Closing a closed drawer must do nothing")
	}
}

func TestState_String(t *testing.T) {
	for state, want := range map[State]string{
		StateClosed:  "closed",
		StateOpening: "opening",
		StateOpen:    "open",
		StateClosing: "closing",
		State(99):    "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
