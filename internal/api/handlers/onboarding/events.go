package onboarding

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/5w1tchy/books-admin/internal/onboarding"
)

// eventRequest is the body of POST /admin/onboarding/events.
type eventRequest struct {
	Type     string                `json:"type"`
	Draft    *onboarding.BookDraft `json:"draft,omitempty"`
	Location *string               `json:"location,omitempty"`
	Index    *int                  `json:"index,omitempty"`
}

var errBadEvent = errors.New("bad event")

func decodeEvent(r io.Reader) (onboarding.Event, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var req eventRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadEvent, err)
	}
	return req.event()
}

func (req eventRequest) event() (onboarding.Event, error) {
	switch req.Type {
	case "edit_draft":
		if req.Draft == nil {
			return nil, missing(req.Type, "draft")
		}
		return onboarding.EditDraft{Draft: *req.Draft}, nil
	case "submit_draft":
		if req.Draft == nil {
			return nil, missing(req.Type, "draft")
		}
		return onboarding.SubmitDraft{Draft: *req.Draft}, nil
	case "cancel_confirmation":
		return onboarding.CancelConfirmation{}, nil
	case "confirm_draft":
		return onboarding.ConfirmDraft{}, nil
	case "submit_location":
		if req.Location == nil {
			return nil, missing(req.Type, "location")
		}
		return onboarding.SubmitLocation{Location: *req.Location}, nil
	case "set_location":
		if req.Index == nil {
			return nil, missing(req.Type, "index")
		}
		if req.Location == nil {
			return nil, missing(req.Type, "location")
		}
		return onboarding.SetLocation{Index: *req.Index, Location: *req.Location}, nil
	case "go_to_copy":
		if req.Index == nil {
			return nil, missing(req.Type, "index")
		}
		return onboarding.GoToCopy{Index: *req.Index}, nil
	case "back":
		return onboarding.Back{}, nil
	case "open_review":
		return onboarding.OpenReview{}, nil
	case "restart_copies":
		return onboarding.RestartCopies{}, nil
	case "confirm_submit":
		return onboarding.ConfirmSubmit{}, nil
	case "":
		return nil, fmt.Errorf("%w: type is required", errBadEvent)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errBadEvent, req.Type)
	}
}

func missing(typ, field string) error {
	return fmt.Errorf("%w: %s requires %s", errBadEvent, typ, field)
}
