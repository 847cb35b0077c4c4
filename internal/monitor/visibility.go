package monitor

import (
	"sync"
	"time"
)

// TabSwitchRecorder receives one call per completed hide/show cycle.
type TabSwitchRecorder interface {
	RecordTabSwitch() (int, error)
}

// VisibilityTracker turns page visibility changes into tab switches.
// Every hidden→shown cycle counts once; there is no debounce.
type VisibilityTracker struct {
	mu       sync.Mutex
	recorder TabSwitchRecorder
	hiddenAt time.Time
	hidden   bool
}

func NewVisibilityTracker(recorder TabSwitchRecorder) *VisibilityTracker {
	return &VisibilityTracker{recorder: recorder}
}

// Hidden marks the page as hidden at t. Repeated calls keep the first timestamp.
func (v *VisibilityTracker) Hidden(t time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hidden {
		return
	}
	v.hidden = true
	v.hiddenAt = t
}

// Shown closes a hide cycle, records the tab switch and returns how long
// the page was away. A Shown without a preceding Hidden records nothing.
func (v *VisibilityTracker) Shown(t time.Time) (time.Duration, bool, error) {
	v.mu.Lock()
	if !v.hidden {
		v.mu.Unlock()
		return 0, false, nil
	}
	away := t.Sub(v.hiddenAt).Truncate(time.Second)
	v.hidden = false
	v.hiddenAt = time.Time{}
	v.mu.Unlock()

	if _, err := v.recorder.RecordTabSwitch(); err != nil {
		return away, false, err
	}
	return max(0, away), true, nil
}

// SpeedBonusWindow is how long the per-question speed bonus takes to drain.
const SpeedBonusWindow = 15 * time.Second

// SpeedBonus drains linearly from 100 to 0 over SpeedBonusWindow. It is
// presentational only and never part of a result.
func SpeedBonus(sinceQuestionStart time.Duration) float64 {
	progress := 100 - float64(sinceQuestionStart)/float64(SpeedBonusWindow)*100
	return min(100, max(0, progress))
}
