package docflow

// ProgressFunc receives pipeline milestones in percent. It is a UI side
// channel with no synchronization semantics; concurrent readers of
// shared progress state must tolerate stale reads.
type ProgressFunc func(percent int)

// Pipeline milestones, reported in order.
const (
	progressValidated    = 10
	progressCodeAssigned = 25
	progressPathResolved = 35
	progressUploaded     = 70
	progressRecorded     = 95
	progressDone         = 100
)

// progressTracker clamps reports so observed progress is monotonically
// increasing even if a step re-reports.
type progressTracker struct {
	fn   ProgressFunc
	last int
}

func newProgressTracker(fn ProgressFunc) *progressTracker {
	return &progressTracker{fn: fn}
}

func (t *progressTracker) report(percent int) {
	if t.fn == nil {
		return
	}
	if percent <= t.last {
		return
	}
	t.last = percent
	t.fn(percent)
}
