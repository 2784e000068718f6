package domain

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:  {QuoteStatusSent},
	QuoteStatusSent:   {QuoteStatusSent, QuoteStatusViewed, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired},
	QuoteStatusViewed: {QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired},
}

// CanTransitionTo reports whether a quote may move from s to next. A quote is
// sent before it can be decided; accepted, rejected and expired are terminal.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateQuoteTransition returns a business error for a disallowed quote transition.
func ValidateQuoteTransition(from, to QuoteStatus) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	return NewBusinessError(ErrInvalidStatusTransition, "quote cannot move from %s to %s", from, to)
}

// CanTransitionTo reports whether a tenant may set a job from s to next by hand.
// Manual statuses move freely among themselves; invoiced and paid are only
// reached through invoice activity and cannot be left by hand.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	return s.IsManual() && next.IsManual()
}

// ValidateJobTransition returns a business error for a disallowed manual job transition.
func ValidateJobTransition(from, to JobStatus) error {
	if !to.IsValid() {
		return NewBusinessError(ErrInvalidStatusTransition, "unknown job status %q", to)
	}
	if !to.IsManual() {
		return NewBusinessError(ErrInvalidStatusTransition,
			"job status %s is derived from invoices and cannot be set directly", to)
	}
	if !from.CanTransitionTo(to) {
		return NewBusinessError(ErrInvalidStatusTransition,
			"job is %s; its status is now driven by its invoices", from)
	}
	return nil
}
