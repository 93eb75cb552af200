// Package onboarding exposes the book-onboarding wizard to admins over
// JSON. Each admin drives exactly one wizard.
package onboarding

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/5w1tchy/books-admin/internal/api/apperr"
	"github.com/5w1tchy/books-admin/internal/api/httpx"
	"github.com/5w1tchy/books-admin/internal/api/middlewares"
	"github.com/5w1tchy/books-admin/internal/onboarding"
	storage "github.com/5w1tchy/books-admin/internal/storage/s3"
	storebooks "github.com/5w1tchy/books-admin/internal/store/books"
)

const (
	maxEventBody = 64 << 10
	maxCoverSize = 10 << 20
)

type Handler struct {
	Reg *Registry
}

func NewHandler(reg *Registry) *Handler { return &Handler{Reg: reg} }

// POST /admin/onboarding
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	owner, ok := owner(w, r)
	if !ok {
		return
	}
	c, err := h.Reg.Start(r.Context(), owner)
	if err != nil {
		log.Printf("[onboarding] start for %s failed: %v", owner, err)
		apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "Service Unavailable", "could not load the category set")
		return
	}
	httpx.OK(w, c.View())
}

// GET /admin/onboarding
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	owner, ok := owner(w, r)
	if !ok {
		return
	}
	c, err := h.Reg.Get(r.Context(), owner)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	httpx.OK(w, c.View())
}

// POST /admin/onboarding/events
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	owner, ok := owner(w, r)
	if !ok {
		return
	}
	ev, err := decodeEvent(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	c, err := h.Reg.Get(r.Context(), owner)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	v, err := c.Dispatch(r.Context(), ev)
	writeResult(w, r, v, err)
}

// PUT /admin/onboarding/cover-preview
func (h *Handler) CoverPreview(w http.ResponseWriter, r *http.Request) {
	owner, ok := owner(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxCoverSize+(1<<20))
	if err := r.ParseMultipartForm(maxCoverSize); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "Bad Request", "failed to parse form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("cover")
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "Bad Request", "missing cover file")
		return
	}
	defer file.Close()

	if header.Size <= 0 || header.Size > maxCoverSize {
		apperr.WriteStatus(w, r, http.StatusRequestEntityTooLarge, "Payload Too Large", "cover must be between 1 byte and 10MB")
		return
	}

	// Trust the bytes, not the part header.
	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	if !storage.AllowedPreviewType(contentType) {
		apperr.WriteStatus(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "cover must be webp, jpeg, or png")
		return
	}

	c, err := h.Reg.Get(r.Context(), owner)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	v, err := c.SelectImage(r.Context(), onboarding.ImageUpload{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        io.Reader(br),
	})
	if err != nil && !isWizardError(err) {
		log.Printf("[onboarding] preview for %s failed: %v", owner, err)
		apperr.Write(w, r, apperr.Problem{Status: http.StatusBadGateway, Title: "Bad Gateway", Detail: "the preview could not be stored", Data: v})
		return
	}
	writeResult(w, r, v, err)
}

// DELETE /admin/onboarding
func (h *Handler) Teardown(w http.ResponseWriter, r *http.Request) {
	owner, ok := owner(w, r)
	if !ok {
		return
	}
	err := h.Reg.Teardown(r.Context(), owner)
	if errors.Is(err, onboarding.ErrBusy) {
		apperr.Write(w, r, apperr.Problem{
			Status:    http.StatusConflict,
			Title:     "Conflict",
			Detail:    "a submission is in progress",
			Retryable: true,
		})
		return
	}
	if err != nil {
		log.Printf("[onboarding] teardown for %s: %v", owner, err)
	}
	httpx.OKNoData(w)
}

func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middlewares.UserIDFrom(r.Context())
	if !ok {
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "")
		return "", false
	}
	return id, true
}

func isWizardError(err error) bool {
	return onboarding.IsValidation(err) ||
		errors.Is(err, onboarding.ErrInvalidTransition) ||
		errors.Is(err, onboarding.ErrBusy) ||
		errors.Is(err, onboarding.ErrClosed)
}

// writeResult maps a controller result to a response. Every response
// carries the current view so the client can re-render.
func writeResult(w http.ResponseWriter, r *http.Request, v onboarding.View, err error) {
	var ve *onboarding.ValidationError
	var se *onboarding.SubmissionError
	switch {
	case err == nil:
		httpx.OK(w, v)
	case errors.As(err, &ve):
		apperr.Write(w, r, apperr.Problem{
			Status:      http.StatusUnprocessableEntity,
			Title:       "Unprocessable Entity",
			FieldErrors: fieldErrors(ve),
			Data:        v,
		})
	case errors.As(err, &se):
		// The wizard is back in review with the banner set.
		httpx.OK(w, v)
	case errors.Is(err, onboarding.ErrBusy):
		apperr.Write(w, r, apperr.Problem{Status: http.StatusConflict, Title: "Conflict", Detail: "a submission is in progress", Retryable: true, Data: v})
	case errors.Is(err, onboarding.ErrInvalidTransition), errors.Is(err, onboarding.ErrIndexOutOfRange):
		apperr.Write(w, r, apperr.Problem{Status: http.StatusConflict, Title: "Conflict", Detail: err.Error(), Data: v})
	case errors.Is(err, onboarding.ErrClosed):
		apperr.WriteStatus(w, r, http.StatusGone, "Gone", "the wizard was closed; start a new one")
	default:
		log.Printf("[onboarding] unexpected error: %v", err)
		apperr.Write(w, r, apperr.Problem{Status: http.StatusInternalServerError, Title: "Internal Server Error", Data: v})
	}
}

func writeRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNoWizard) {
		apperr.WriteStatus(w, r, http.StatusNotFound, "Not Found", "no onboarding in progress; POST /admin/onboarding to start")
		return
	}
	log.Printf("[onboarding] registry: %v", err)
	apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "")
}

func fieldErrors(ve *onboarding.ValidationError) []apperr.FieldError {
	out := make([]apperr.FieldError, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		out = append(out, apperr.FieldError{Field: f.Field, Code: f.Code, Message: f.Message})
	}
	return out
}

// Describe turns a submission failure into the banner shown in review.
// Database errors the admin can act on name the offending field.
func Describe(err error) string {
	if errors.Is(err, storebooks.ErrUnknownCategory) {
		return "the category no longer exists; go back and pick another, your copies are kept"
	}
	if p, ok := apperr.FromPG(err); ok {
		switch {
		case len(p.FieldErrors) > 0:
			fe := p.FieldErrors[0]
			return fmt.Sprintf("the book could not be saved (%s: %s); your data is kept, correct it and confirm again", fe.Field, fe.Message)
		case p.Retryable:
			return "the catalog was busy; your data is kept, please confirm again"
		}
	}
	return onboarding.DescribeSubmitError(err)
}
