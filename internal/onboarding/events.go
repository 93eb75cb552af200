package onboarding

// Event is one user action or collaborator outcome.
type Event interface {
	EventName() string
}

type (
	// EditDraft stores unvalidated form input.
	EditDraft struct{ Draft BookDraft }

	// SubmitDraft validates the form and opens the confirmation dialog.
	SubmitDraft struct{ Draft BookDraft }

	CancelConfirmation struct{}
	ConfirmDraft       struct{}

	// SubmitLocation stores the location at the current index and advances.
	SubmitLocation struct{ Location string }

	// SetLocation stores a location at any index without moving.
	SetLocation struct {
		Index    int
		Location string
	}

	GoToCopy      struct{ Index int }
	Back          struct{}
	OpenReview    struct{}
	RestartCopies struct{}

	ConfirmSubmit   struct{}
	SubmitSucceeded struct{ ID string }
	SubmitFailed    struct{ Err error }

	// StartOver leaves Completed for a fresh wizard.
	StartOver struct{}
)

func (EditDraft) EventName() string          { return "edit_draft" }
func (SubmitDraft) EventName() string        { return "submit_draft" }
func (CancelConfirmation) EventName() string { return "cancel_confirmation" }
func (ConfirmDraft) EventName() string       { return "confirm_draft" }
func (SubmitLocation) EventName() string     { return "submit_location" }
func (SetLocation) EventName() string        { return "set_location" }
func (GoToCopy) EventName() string           { return "go_to_copy" }
func (Back) EventName() string               { return "back" }
func (OpenReview) EventName() string         { return "open_review" }
func (RestartCopies) EventName() string      { return "restart_copies" }
func (ConfirmSubmit) EventName() string      { return "confirm_submit" }
func (SubmitSucceeded) EventName() string    { return "submit_succeeded" }
func (SubmitFailed) EventName() string       { return "submit_failed" }
func (StartOver) EventName() string          { return "start_over" }
