package httptransport

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"portal/internal/registration/draft"
	"portal/internal/registration/models"
	"portal/internal/registration/registry"
	"portal/internal/registration/submission"
	id "portal/pkg/domain"
	dErrors "portal/pkg/domain-errors"
	"portal/pkg/platform/httputil"
	"portal/pkg/requestcontext"
)

// uploadField is the multipart part carrying a document.
const uploadField = "file"

// Drafts is the registry the handler serves forms from.
type Drafts interface {
	Create() *registry.Form
	Get(draftID id.DraftID) (*registry.Form, error)
	Remove(draftID id.DraftID) bool
}

// RegistrationHandler exposes the registration form over HTTP.
type RegistrationHandler struct {
	drafts         Drafts
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewRegistrationHandler(drafts Drafts, logger *slog.Logger, maxUploadBytes int64) *RegistrationHandler {
	return &RegistrationHandler{drafts: drafts, logger: logger, maxUploadBytes: maxUploadBytes}
}

// Register mounts the registration routes.
func (h *RegistrationHandler) Register(r chi.Router) {
	r.Route("/v1/registrations", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDiscard)
			r.Put("/fields/{field}", h.handleSetField)
			r.Put("/address/{field}", h.handleSetAddress)
			r.Put("/operational/capacity", h.handleSetCapacity)
			r.Put("/operational/working-hours", h.handleSetWorkingHours)
			r.Put("/arrays/{path}/{value}", h.handleToggle(true))
			r.Delete("/arrays/{path}/{value}", h.handleToggle(false))
			r.Post("/documents", h.handleUpload)
			r.Delete("/documents/{index}", h.handleRemoveDocument)
			r.Post("/submit", h.handleSubmit)
		})
	})
}

func (h *RegistrationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	form := h.drafts.Create()
	h.logger.InfoContext(r.Context(), "registration draft created",
		"request_id", requestcontext.RequestID(r.Context()),
		"draft_id", form.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, newDraftResponse(form))
}

func (h *RegistrationHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newDraftResponse(form))
}

func (h *RegistrationHandler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	draftID, err := id.ParseDraftID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !h.drafts.Remove(draftID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "registration draft not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) handleSetField(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	field, err := draft.ParseScalarField(chi.URLParam(r, "field"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[FieldValueRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.respond(w, r, form, form.Store.SetField(field, *req.Value))
}

func (h *RegistrationHandler) handleSetAddress(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	key, err := draft.ParseAddressKey(chi.URLParam(r, "field"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[FieldValueRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.respond(w, r, form, form.Store.SetNestedField(draft.AddressField{Field: key, Value: *req.Value}))
}

func (h *RegistrationHandler) handleSetCapacity(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CapacityRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.respond(w, r, form, form.Store.SetNestedField(draft.Capacity{Value: *req.Value}))
}

func (h *RegistrationHandler) handleSetWorkingHours(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[WorkingHoursRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	m := draft.WorkingHoursField{Hours: models.WorkingHours{Start: req.Start, End: req.End}}
	h.respond(w, r, form, form.Store.SetNestedField(m))
}

func (h *RegistrationHandler) handleToggle(present bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := h.form(w, r)
		if !ok {
			return
		}
		path, err := draft.ParseArrayPath(chi.URLParam(r, "path"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		value := chi.URLParam(r, "value")
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		h.respond(w, r, form, form.Store.SetArrayField(path, value, present))
	}
}

func (h *RegistrationHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, ok := h.form(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "document exceeds the upload size limit"))
			return
		}
		h.logger.WarnContext(ctx, "invalid document upload",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "document exceeds the upload size limit"))
		return
	}
	contentType, err := documentContentType(header.Header.Get("Content-Type"), content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := form.Store.AddDocument(header.Filename, contentType, content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "document staged",
		"request_id", requestcontext.RequestID(ctx),
		"draft_id", form.ID.String(),
		"content_type", contentType,
		"size", doc.Size,
	)
	httputil.WriteJSON(w, http.StatusCreated, DocumentResponse{
		Index:    len(form.Store.Snapshot().Documents) - 1,
		Document: doc,
	})
}

func (h *RegistrationHandler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "document index must be a number"))
		return
	}
	h.respond(w, r, form, form.Store.RemoveDocument(index))
}

func (h *RegistrationHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	outcome, err := form.Controller.Submit(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, outcomeStatus(outcome.Kind), outcome)
}

// form resolves the {id} route parameter, writing the error response itself.
func (h *RegistrationHandler) form(w http.ResponseWriter, r *http.Request) (*registry.Form, bool) {
	draftID, err := id.ParseDraftID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	form, err := h.drafts.Get(draftID)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return form, true
}

func (h *RegistrationHandler) respond(w http.ResponseWriter, r *http.Request, form *registry.Form, err error) {
	if err != nil {
		h.logger.InfoContext(r.Context(), "draft edit rejected",
			"request_id", requestcontext.RequestID(r.Context()),
			"draft_id", form.ID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newDraftResponse(form))
}

func outcomeStatus(kind submission.OutcomeKind) int {
	switch kind {
	case submission.OutcomeSucceeded:
		return http.StatusOK
	case submission.OutcomeViolation:
		return http.StatusBadRequest
	case submission.OutcomeRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// documentContentType accepts images and PDFs. The declared type is used when
// present, otherwise the content is sniffed.
func documentContentType(declared string, content []byte) (string, error) {
	ct := declared
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(content)
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "unrecognized document type")
	}
	if strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf" {
		return mediaType, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "only images and PDF documents are accepted")
}
