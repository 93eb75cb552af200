package onboarding

import (
	"fmt"
	"strconv"
)

// Transition applies ev to s and returns the next state. It never mutates s.
//
// Errors:
//   - *ValidationError: the returned state keeps the stage, records the
//     field errors and any input carried by the event.
//   - ErrInvalidTransition (wrapped): s is returned unchanged.
func Transition(s State, ev Event) (State, error) {
	next := s.clone()

	switch e := ev.(type) {
	case EditDraft:
		if s.Stage != StageCollectingBookDetails {
			return s, invalid(s, ev)
		}
		next.Draft = e.Draft
		return next, nil

	case SubmitDraft:
		if s.Stage != StageCollectingBookDetails {
			return s, invalid(s, ev)
		}
		draft, err := ValidateDraft(e.Draft, s.Rules)
		next.Draft = draft
		if err != nil {
			next.FieldErrors = err.(*ValidationError).Fields
			return next, err
		}
		next.FieldErrors = nil
		next.FormError = ""
		next.Stage = StageConfirmingBookDetails
		return next, nil

	case CancelConfirmation:
		if s.Stage != StageConfirmingBookDetails {
			return s, invalid(s, ev)
		}
		next.Stage = StageCollectingBookDetails
		return next, nil

	case ConfirmDraft:
		if s.Stage != StageConfirmingBookDetails {
			return s, invalid(s, ev)
		}
		if next.Copies.Len() != s.Draft.CopyCount {
			next.Copies = next.Copies.Resize(s.Draft.CopyCount)
		}
		next.Current = 0
		next.Stage = StageCollectingCopyLocations
		return next, nil

	case SubmitLocation:
		if s.Stage != StageCollectingCopyLocations {
			return s, invalid(s, ev)
		}
		if err := next.Copies.Set(s.Current, e.Location); err != nil {
			return withFieldErrors(s, err)
		}
		if next.Copies[s.Current] == "" {
			return withFieldErrors(s, fieldErr(copyField(s.Current), "required", "location is required"))
		}
		next.FieldErrors = nil
		if s.Current < next.Copies.Len()-1 {
			next.Current = s.Current + 1
			return next, nil
		}
		next.Stage = StageReviewingLocations
		return next, nil

	case SetLocation:
		if s.Stage != StageCollectingCopyLocations {
			return s, invalid(s, ev)
		}
		if err := next.Copies.Set(e.Index, e.Location); err != nil {
			return withFieldErrors(s, indexError(err, e.Index))
		}
		next.FieldErrors = nil
		return next, nil

	case GoToCopy:
		if s.Stage != StageCollectingCopyLocations && s.Stage != StageReviewingLocations {
			return s, invalid(s, ev)
		}
		if _, err := next.Copies.Get(e.Index); err != nil {
			return withFieldErrors(s, indexError(err, e.Index))
		}
		next.Current = e.Index
		next.FieldErrors = nil
		next.Stage = StageCollectingCopyLocations
		return next, nil

	case Back:
		if s.Stage != StageCollectingCopyLocations {
			return s, invalid(s, ev)
		}
		next.FieldErrors = nil
		if s.Current > 0 {
			next.Current = s.Current - 1
			return next, nil
		}
		next.Stage = StageCollectingBookDetails
		return next, nil

	case OpenReview:
		if s.Stage != StageCollectingCopyLocations {
			return s, invalid(s, ev)
		}
		next.FieldErrors = nil
		next.Stage = StageReviewingLocations
		return next, nil

	case RestartCopies:
		if s.Stage != StageCollectingCopyLocations && s.Stage != StageReviewingLocations {
			return s, invalid(s, ev)
		}
		next.Copies.Clear()
		next.Current = 0
		next.FieldErrors = nil
		next.FormError = ""
		next.Stage = StageCollectingCopyLocations
		return next, nil

	case ConfirmSubmit:
		if s.Stage != StageReviewingLocations {
			return s, invalid(s, ev)
		}
		if missing := s.Copies.Summary().Missing; len(missing) > 0 || s.Copies.Len() == 0 {
			fe := make([]FieldError, 0, len(missing))
			for _, i := range missing {
				fe = append(fe, FieldError{Field: copyField(i), Code: "required", Message: "location is required"})
			}
			if len(fe) == 0 {
				fe = append(fe, FieldError{Field: "copies", Code: "required", Message: "at least one copy is required"})
			}
			return withFieldErrors(s, &ValidationError{Fields: fe})
		}
		next.FieldErrors = nil
		next.FormError = ""
		next.Stage = StageSubmitting
		return next, nil

	case SubmitSucceeded:
		if s.Stage != StageSubmitting {
			return s, invalid(s, ev)
		}
		done := Initial(s.Rules)
		done.Stage = StageCompleted
		done.CreatedID = e.ID
		return done, nil

	case SubmitFailed:
		if s.Stage != StageSubmitting {
			return s, invalid(s, ev)
		}
		next.Stage = StageReviewingLocations
		next.FormError = "submission failed"
		if e.Err != nil {
			next.FormError = e.Err.Error()
		}
		return next, nil

	case StartOver:
		if s.Stage != StageCompleted {
			return s, invalid(s, ev)
		}
		return Initial(s.Rules), nil
	}

	return s, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
}

func invalid(s State, ev Event) error {
	return fmt.Errorf("%w: %s in stage %s", ErrInvalidTransition, ev.EventName(), s.Stage)
}

// withFieldErrors records field errors on a copy of s and keeps its stage.
func withFieldErrors(s State, err error) (State, error) {
	out := s.clone()
	if ve, ok := err.(*ValidationError); ok {
		out.FieldErrors = ve.Fields
	}
	return out, err
}

func indexError(err error, i int) error {
	if ve, ok := err.(*ValidationError); ok {
		return ve
	}
	return fieldErr("index", "out_of_range", "no copy at index "+strconv.Itoa(i))
}
