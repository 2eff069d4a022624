package alert

// DefaultThresholds are days remaining that trigger an expiry alert.
var DefaultThresholds = []int{10, 5, 4, 3, 2, 1} //nolint:gochecknoglobals

// Tracker remembers which thresholds have already been alerted for each
// domain. A value alerts at most once per domain for the process lifetime.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	thresholds map[int]struct{}
	sent       map[string]map[int]struct{}
}

// NewTracker returns Tracker for thresholds, DefaultThresholds when empty.
func NewTracker(thresholds []int) *Tracker {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}

	t := &Tracker{
		thresholds: make(map[int]struct{}, len(thresholds)),
		sent:       make(map[string]map[int]struct{}),
	}
	for _, th := range thresholds {
		t.thresholds[th] = struct{}{}
	}

	return t
}

// ShouldAlert reports whether days is a threshold not yet alerted for domain.
func (t *Tracker) ShouldAlert(domain string, days int) bool {
	if _, ok := t.thresholds[days]; !ok {
		return false
	}
	_, done := t.sent[domain][days]
	return !done
}

// MarkAlerted records a delivered alert.
func (t *Tracker) MarkAlerted(domain string, days int) {
	marks, ok := t.sent[domain]
	if !ok {
		marks = make(map[int]struct{})
		t.sent[domain] = marks
	}
	marks[days] = struct{}{}
}

// Forget drops everything known about domain.
func (t *Tracker) Forget(domain string) {
	delete(t.sent, domain)
}
