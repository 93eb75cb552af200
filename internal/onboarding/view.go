package onboarding

// View is what a client renders. Every flag is derived from the stage.
type View struct {
	WizardID          string       `json:"wizard_id"`
	Stage             Stage        `json:"stage"`
	Draft             BookDraft    `json:"draft"`
	Copies            []CopyView   `json:"copies"`
	CurrentIndex      *int         `json:"current_index,omitempty"`
	Progress          Progress     `json:"progress"`
	ConfirmDialogOpen bool         `json:"confirm_dialog_open"`
	ReviewDialogOpen  bool         `json:"review_dialog_open"`
	Submitting        bool         `json:"submitting"`
	CanSubmit         bool         `json:"can_submit"`
	FormError         string       `json:"form_error,omitempty"`
	FieldErrors       []FieldError `json:"field_errors,omitempty"`
	Preview           *Preview     `json:"preview,omitempty"`
	Categories        []string     `json:"categories"`
	CreatedID         string       `json:"created_id,omitempty"`
}

type CopyView struct {
	Index    int    `json:"index"`
	Location string `json:"location"`
	Complete bool   `json:"complete"`
}

func ViewOf(wizardID string, s State, preview *Preview) View {
	v := View{
		WizardID:          wizardID,
		Stage:             s.Stage,
		Draft:             s.Draft,
		Copies:            make([]CopyView, 0, s.Copies.Len()),
		Progress:          s.Copies.Summary(),
		ConfirmDialogOpen: s.Stage == StageConfirmingBookDetails,
		ReviewDialogOpen:  s.Stage == StageReviewingLocations || s.Stage == StageSubmitting,
		Submitting:        s.Stage == StageSubmitting,
		CanSubmit:         s.Stage == StageReviewingLocations && s.Copies.AllComplete(),
		FormError:         s.FormError,
		FieldErrors:       s.FieldErrors,
		Categories:        s.Rules.Categories,
		CreatedID:         s.CreatedID,
	}
	if v.Categories == nil {
		v.Categories = []string{}
	}
	for _, e := range s.Copies.Entries() {
		v.Copies = append(v.Copies, CopyView{Index: e.Index, Location: e.Location, Complete: e.Location != ""})
	}
	if s.Stage.collectsCopies() {
		cur := s.Current
		v.CurrentIndex = &cur
	}
	if preview != nil {
		p := *preview
		v.Preview = &p
	}
	return v
}
