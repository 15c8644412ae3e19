package slots

import "time"

// Observer receives lifecycle and sweep events, typically for metrics.
type Observer interface {
	SlotCreated(restored bool)
	SlotRevoked(reason string)
	SlotTransferred()
	MentionInspected(v Verdict)
	SweepFinished(sweep string, report SweepReport, took time.Duration)
}

type nopObserver struct{}

func (nopObserver) SlotCreated(bool) {}
func (nopObserver) SlotRevoked(string) {}
func (nopObserver) SlotTransferred() {}
func (nopObserver) MentionInspected(Verdict) {}
func (nopObserver) SweepFinished(string, SweepReport, time.Duration) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
