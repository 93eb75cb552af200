package onboarding

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step applies ev and fails the test on any error.
func step(t *testing.T, s State, ev Event) State {
	t.Helper()
	next, err := Transition(s, ev)
	require.NoError(t, err, "event %s in %s", ev.EventName(), s.Stage)
	return next
}

func collecting(t *testing.T, copies int) State {
	t.Helper()
	s := Initial(testRules)
	s = step(t, s, SubmitDraft{Draft: validDraft(copies)})
	return step(t, s, ConfirmDraft{})
}

func reviewing(t *testing.T, locations ...string) State {
	t.Helper()
	s := collecting(t, len(locations))
	for _, loc := range locations {
		s = step(t, s, SubmitLocation{Location: loc})
	}
	require.Equal(t, StageReviewingLocations, s.Stage)
	return s
}

func TestTransition_HappyPath(t *testing.T) {
	s := Initial(testRules)
	require.Equal(t, StageCollectingBookDetails, s.Stage)

	s = step(t, s, SubmitDraft{Draft: validDraft(2)})
	require.Equal(t, StageConfirmingBookDetails, s.Stage)
	require.Equal(t, 0, s.Copies.Len(), "no slots before confirmation")

	s = step(t, s, ConfirmDraft{})
	require.Equal(t, StageCollectingCopyLocations, s.Stage)
	require.Equal(t, 0, s.Current)

	s = step(t, s, SubmitLocation{Location: "Sala A"})
	require.Equal(t, 1, s.Current)
	s = step(t, s, SubmitLocation{Location: "Sala B"})
	require.Equal(t, StageReviewingLocations, s.Stage)

	s = step(t, s, ConfirmSubmit{})
	require.Equal(t, StageSubmitting, s.Stage)

	s = step(t, s, SubmitSucceeded{ID: "42"})
	require.Equal(t, StageCompleted, s.Stage)
	require.Equal(t, "42", s.CreatedID)
	require.Equal(t, BookDraft{}, s.Draft)
	require.Equal(t, 0, s.Copies.Len())

	s = step(t, s, StartOver{})
	require.Equal(t, Initial(testRules), s)
}

func TestTransition_AllocatesExactlyNSlots(t *testing.T) {
	for n := 1; n <= testRules.MaxCopies; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			s := collecting(t, n)
			require.Equal(t, n, s.Copies.Len())
			for i := 0; i < n; i++ {
				e, err := s.Copies.Get(i)
				require.NoError(t, err)
				require.Equal(t, i, e.Index)
				require.Empty(t, e.Location)
			}
			_, err := s.Copies.Get(n)
			require.ErrorIs(t, err, ErrIndexOutOfRange)
		})
	}
}

func TestTransition_InvalidDraftStaysInDetails(t *testing.T) {
	d := validDraft(2)
	d.ISBN = "nope"
	s, err := Transition(Initial(testRules), SubmitDraft{Draft: d})
	require.True(t, IsValidation(err))
	assert.Equal(t, StageCollectingBookDetails, s.Stage)
	assert.Equal(t, "nope", s.Draft.ISBN, "input is kept for correction")
	require.Len(t, s.FieldErrors, 1)
	assert.Equal(t, "isbn", s.FieldErrors[0].Field)

	d.ISBN = "0-306-40615-2"
	s = step(t, s, SubmitDraft{Draft: d})
	assert.Equal(t, StageConfirmingBookDetails, s.Stage)
	assert.Empty(t, s.FieldErrors)
}

func TestTransition_CancelConfirmationKeepsDraft(t *testing.T) {
	s := step(t, Initial(testRules), SubmitDraft{Draft: validDraft(2)})
	confirmed := s.Draft
	s = step(t, s, CancelConfirmation{})
	assert.Equal(t, StageCollectingBookDetails, s.Stage)
	assert.Equal(t, confirmed, s.Draft)

	s = step(t, s, EditDraft{Draft: BookDraft{Title: "partial"}})
	assert.Equal(t, "partial", s.Draft.Title)
}

func TestTransition_DraftImmutableAfterConfirm(t *testing.T) {
	s := collecting(t, 2)
	_, err := Transition(s, EditDraft{Draft: BookDraft{Title: "x"}})
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = Transition(s, SubmitDraft{Draft: validDraft(3)})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

// Scenario: copyCount=3, entry[0] filled, advancing with entry[1] empty is blocked.
func TestTransition_EmptyLocationBlocksAdvance(t *testing.T) {
	s := collecting(t, 3)
	s = step(t, s, SubmitLocation{Location: "Sala A - Estante 3"})

	blocked, err := Transition(s, SubmitLocation{Location: "   "})
	require.True(t, IsValidation(err))
	assert.Equal(t, StageCollectingCopyLocations, blocked.Stage)
	assert.Equal(t, 1, blocked.Current)
	assert.Equal(t, s.Copies, blocked.Copies)
	require.Len(t, blocked.FieldErrors, 1)
	assert.Equal(t, "copies[1]", blocked.FieldErrors[0].Field)

	// continuing the same session reaches review with three complete entries
	s = step(t, blocked, SubmitLocation{Location: "Sala B"})
	s = step(t, s, SubmitLocation{Location: "Sala C"})
	assert.Equal(t, StageReviewingLocations, s.Stage)
	assert.Equal(t, 3, s.Copies.Summary().Completed)
	assert.Empty(t, s.FieldErrors)
}

// Scenario: at index 1, jumping to 0 leaves entry[1] untouched.
func TestTransition_RandomAccessKeepsOtherEntries(t *testing.T) {
	s := collecting(t, 3)
	s = step(t, s, SubmitLocation{Location: "Sala A"})
	s = step(t, s, SetLocation{Index: 1, Location: "Sala B"})
	require.Equal(t, 1, s.Current)

	s = step(t, s, GoToCopy{Index: 0})
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, Copies{"Sala A", "Sala B", ""}, s.Copies)

	// leaving an incomplete entry is allowed
	s = step(t, s, GoToCopy{Index: 2})
	s = step(t, s, GoToCopy{Index: 1})
	assert.False(t, s.Copies.IsComplete(2))

	_, err := Transition(s, GoToCopy{Index: 3})
	require.True(t, IsValidation(err))
	_, err = Transition(s, SetLocation{Index: -1, Location: "x"})
	require.True(t, IsValidation(err))
}

func TestTransition_BackNeverTouchesEntries(t *testing.T) {
	s := collecting(t, 3)
	s = step(t, s, SubmitLocation{Location: "Sala A"})
	s = step(t, s, SubmitLocation{Location: "Sala B"})
	before := s.Copies.Clone()

	s = step(t, s, Back{})
	assert.Equal(t, 1, s.Current)
	s = step(t, s, Back{})
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, before, s.Copies)

	// Scenario: back at index 0 returns to the editable draft, entries stay allocated.
	s = step(t, s, Back{})
	assert.Equal(t, StageCollectingBookDetails, s.Stage)
	assert.Equal(t, before, s.Copies)
}

func TestTransition_ReconfirmResizesRetainedEntries(t *testing.T) {
	s := collecting(t, 3)
	s = step(t, s, SubmitLocation{Location: "Sala A"})
	s = step(t, s, SubmitLocation{Location: "Sala B"})
	s = step(t, s, Back{})
	s = step(t, s, Back{})
	s = step(t, s, Back{})
	require.Equal(t, StageCollectingBookDetails, s.Stage)

	t.Run("same count keeps everything", func(t *testing.T) {
		n := step(t, s, SubmitDraft{Draft: validDraft(3)})
		n = step(t, n, ConfirmDraft{})
		assert.Equal(t, Copies{"Sala A", "Sala B", ""}, n.Copies)
		assert.Equal(t, 0, n.Current)
	})
	t.Run("shrinking truncates", func(t *testing.T) {
		n := step(t, s, SubmitDraft{Draft: validDraft(1)})
		n = step(t, n, ConfirmDraft{})
		assert.Equal(t, Copies{"Sala A"}, n.Copies)
	})
	t.Run("growing appends empty slots", func(t *testing.T) {
		n := step(t, s, SubmitDraft{Draft: validDraft(5)})
		n = step(t, n, ConfirmDraft{})
		assert.Equal(t, Copies{"Sala A", "Sala B", "", "", ""}, n.Copies)
	})
}

func TestTransition_ReviewRequiresEveryEntry(t *testing.T) {
	s := collecting(t, 3)
	s = step(t, s, SubmitLocation{Location: "Sala A"})
	s = step(t, s, OpenReview{})
	require.Equal(t, StageReviewingLocations, s.Stage)

	blocked, err := Transition(s, ConfirmSubmit{})
	require.True(t, IsValidation(err))
	assert.Equal(t, StageReviewingLocations, blocked.Stage)
	require.Len(t, blocked.FieldErrors, 2)
	assert.Equal(t, "copies[1]", blocked.FieldErrors[0].Field)
	assert.Equal(t, "copies[2]", blocked.FieldErrors[1].Field)

	// editing from review goes back to the collector at that index
	s = step(t, blocked, GoToCopy{Index: 2})
	assert.Equal(t, StageCollectingCopyLocations, s.Stage)
	assert.Equal(t, 2, s.Current)
	assert.Equal(t, "Sala A", s.Copies[0])
}

func TestTransition_RestartCopies(t *testing.T) {
	s := reviewing(t, "A", "B")
	s = step(t, s, RestartCopies{})
	assert.Equal(t, StageCollectingCopyLocations, s.Stage)
	assert.Equal(t, Copies{"", ""}, s.Copies)
	assert.Equal(t, 0, s.Current)
}

func TestTransition_FailureRoundTripsData(t *testing.T) {
	s := reviewing(t, "Sala A", "Sala B", "Sala C")
	draftBefore, copiesBefore := s.Draft, s.Copies.Clone()

	s = step(t, s, ConfirmSubmit{})
	s = step(t, s, SubmitFailed{Err: errors.New("db down")})

	assert.Equal(t, StageReviewingLocations, s.Stage)
	assert.Equal(t, "db down", s.FormError)
	assert.Equal(t, draftBefore, s.Draft)
	assert.Equal(t, copiesBefore, s.Copies)

	// retry without retyping
	s = step(t, s, ConfirmSubmit{})
	assert.Equal(t, StageSubmitting, s.Stage)
	assert.Empty(t, s.FormError)
}

func TestTransition_InvalidEventsLeaveStateUnchanged(t *testing.T) {
	cases := []struct {
		name  string
		state State
		ev    Event
	}{
		{"confirm without draft", Initial(testRules), ConfirmDraft{}},
		{"submit location in details", Initial(testRules), SubmitLocation{Location: "x"}},
		{"review in details", Initial(testRules), OpenReview{}},
		{"back while confirming", step(t, Initial(testRules), SubmitDraft{Draft: validDraft(1)}), Back{}},
		{"second confirm while submitting", step(t, reviewing(t, "A"), ConfirmSubmit{}), ConfirmSubmit{}},
		{"go to copy while submitting", step(t, reviewing(t, "A"), ConfirmSubmit{}), GoToCopy{Index: 0}},
		{"success outside submitting", reviewing(t, "A"), SubmitSucceeded{ID: "1"}},
		{"failure outside submitting", collecting(t, 1), SubmitFailed{}},
		{"start over before completion", Initial(testRules), StartOver{}},
		{"restart copies in details", Initial(testRules), RestartCopies{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.ev)
			require.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tc.state, next)
		})
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	s := collecting(t, 2)
	snapshot := s.Copies.Clone()
	_ = step(t, s, SubmitLocation{Location: "Sala A"})
	_ = step(t, s, SetLocation{Index: 1, Location: "Sala B"})
	assert.Equal(t, snapshot, s.Copies)

	r := reviewing(t, "A", "B")
	_ = step(t, r, RestartCopies{})
	assert.Equal(t, Copies{"A", "B"}, r.Copies)
}

func TestRestore(t *testing.T) {
	s := step(t, reviewing(t, "A", "B"), ConfirmSubmit{})
	r := Restore(s)
	assert.Equal(t, StageReviewingLocations, r.Stage)
	assert.NotEmpty(t, r.FormError)
	assert.Equal(t, s.Copies, r.Copies)

	broken := collecting(t, 2)
	broken.Current = 7
	assert.Equal(t, 0, Restore(broken).Current)

	assert.Equal(t, Initial(testRules), Restore(State{Stage: "bogus", Rules: testRules}))
}
