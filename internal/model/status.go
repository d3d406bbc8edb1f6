package model

// rank orders the non-failed statuses; a transition may only increase it.
var rank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusSent:       2,
	StatusDelivered:  3,
}

// CanTransition reports whether a notification in status from may move to status to.
//
// Forward moves are allowed, including skipped steps (pending -> sent). Reporting the
// current status again is allowed and treated as a refresh. failed is reachable from
// pending and processing, and failed -> failed may overwrite the error. delivered is final.
//
// Status reports never leave failed. The one exception is a resubmission of the same
// request_id, which the notification service moves from failed back to pending without
// consulting CanTransition.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}

	switch from {
	case StatusDelivered:
		return to == StatusDelivered
	case StatusFailed:
		return to == StatusFailed
	}

	if to == StatusFailed {
		return from == StatusPending || from == StatusProcessing
	}

	return rank[to] >= rank[from]
}

// MarksSent reports whether entering s stamps sent_at.
func (s Status) MarksSent() bool {
	return s == StatusSent || s == StatusDelivered
}
