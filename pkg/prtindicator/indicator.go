// Package prtindicator implements the blinking activity indicator shown while
// a transmission is in progress.
package prtindicator

import (
	"sync"
	"time"
)

// DefaultPeriod is the glyph alternation period
const DefaultPeriod = 500 * time.Millisecond

// Phase is the currently visible glyph
type Phase int

const (
	PhaseOff Phase = iota
	PhaseOn
)

// Glyph returns the character rendered for the phase
func (p Phase) Glyph() string {
	if p == PhaseOn {
		return "●"
	}
	return "○"
}

func (p Phase) String() string {
	if p == PhaseOn {
		return "On"
	}
	return "Off"
}

// State is a point-in-time view of the indicator
type State struct {
	Blinking bool
	Phase    Phase
}

// Indicator is a two-state machine {Off, Blinking}. While blinking, a
// goroutine alternates the phase every period. It never leaves Blinking on
// its own; only Stop does that.
type Indicator struct {
	mu       sync.Mutex
	period   time.Duration
	blinking bool
	phase    Phase
	stopCh   chan struct{}
	starts   uint64
	onChange func(State)
	wg       sync.WaitGroup
}

// New creates an indicator in the Off state. onChange, if set, is called with
// every state change while the indicator lock is held, so it must not call
// back into the Indicator.
func New(period time.Duration, onChange func(State)) *Indicator {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Indicator{
		period:   period,
		onChange: onChange,
	}
}

// Start begins blinking. Returns false if the indicator was already blinking.
func (i *Indicator) Start() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.blinking {
		return false
	}

	i.blinking = true
	i.phase = PhaseOn
	i.starts++
	stopCh := make(chan struct{})
	i.stopCh = stopCh

	i.wg.Add(1)
	go i.blink(stopCh)

	i.notify()
	return true
}

// Stop cancels the alternation and forces the phase to Off. Returns false if
// the indicator was already Off.
func (i *Indicator) Stop() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.blinking {
		return false
	}

	close(i.stopCh)
	i.stopCh = nil
	i.blinking = false
	i.phase = PhaseOff

	i.notify()
	return true
}

// Close stops the indicator and waits for the blink goroutine to exit
func (i *Indicator) Close() {
	i.Stop()
	i.wg.Wait()
}

// State returns the current state
func (i *Indicator) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return State{Blinking: i.blinking, Phase: i.phase}
}

// IsBlinking reports whether the indicator is in the Blinking state
func (i *Indicator) IsBlinking() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.blinking
}

// Starts returns how many Off to Blinking transitions have happened
func (i *Indicator) Starts() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.starts
}

func (i *Indicator) blink(stopCh chan struct{}) {
	defer i.wg.Done()

	ticker := time.NewTicker(i.period)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			i.mu.Lock()
			// A tick can race with Stop; only the current cycle may toggle.
			if i.stopCh == stopCh {
				if i.phase == PhaseOn {
					i.phase = PhaseOff
				} else {
					i.phase = PhaseOn
				}
				i.notify()
			}
			i.mu.Unlock()
		}
	}
}

// notify must be called with lock held
func (i *Indicator) notify() {
	if i.onChange != nil {
		i.onChange(State{Blinking: i.blinking, Phase: i.phase})
	}
}
