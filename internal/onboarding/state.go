// Package onboarding implements the book-onboarding wizard: book details,
// a confirmation gate, per-copy locations, a review gate and a single
// atomic submission. The state machine is a pure function over State;
// Controller serializes events and talks to the collaborators.
package onboarding

type Stage string

const (
	StageCollectingBookDetails   Stage = "collecting_book_details"
	StageConfirmingBookDetails   Stage = "confirming_book_details"
	StageCollectingCopyLocations Stage = "collecting_copy_locations"
	StageReviewingLocations      Stage = "reviewing_locations"
	StageSubmitting              Stage = "submitting"
	StageCompleted               Stage = "completed"
)

func (s Stage) Valid() bool {
	switch s {
	case StageCollectingBookDetails, StageConfirmingBookDetails, StageCollectingCopyLocations,
		StageReviewingLocations, StageSubmitting, StageCompleted:
		return true
	}
	return false
}

// collectsCopies reports whether Current must index into Copies.
func (s Stage) collectsCopies() bool {
	return s == StageCollectingCopyLocations || s == StageReviewingLocations || s == StageSubmitting
}

// State is the whole wizard. Dialog visibility is derived from Stage.
type State struct {
	Stage       Stage        `json:"stage"`
	Rules       Rules        `json:"rules"`
	Draft       BookDraft    `json:"draft"`
	Copies      Copies       `json:"copies"`
	Current     int          `json:"current"`
	FormError   string       `json:"form_error,omitempty"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
	CreatedID   string       `json:"created_id,omitempty"`
}

func Initial(rules Rules) State {
	return State{Stage: StageCollectingBookDetails, Rules: rules}
}

func (s State) clone() State {
	out := s
	out.Copies = s.Copies.Clone()
	if s.FieldErrors != nil {
		out.FieldErrors = append([]FieldError(nil), s.FieldErrors...)
	}
	return out
}

// Restore repairs a state loaded from a snapshot. A snapshot taken while
// a submission was pending comes back in review with a banner, since the
// call's outcome was lost.
func Restore(s State) State {
	if !s.Stage.Valid() || s.Stage == StageCompleted {
		return Initial(s.Rules)
	}
	if s.Stage == StageSubmitting {
		s.Stage = StageReviewingLocations
		s.FormError = "the previous submission was interrupted; check the catalog before confirming again"
	}
	if s.Stage.collectsCopies() && (s.Current < 0 || s.Current >= s.Copies.Len()) {
		s.Current = 0
	}
	if s.Stage.collectsCopies() && s.Copies.Len() == 0 {
		return Initial(s.Rules)
	}
	return s
}
