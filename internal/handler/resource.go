package handler

import (
	"log/slog"
	"net/http"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/auth"
	"github.com/hasan-mia/manufacturer-server/internal/service"
)

// ResourceHandler serves the document CRUD endpoints. One instance per
// resource (product, order, blog, ...) — the handlers are identical, only
// the backing collection and field whitelist differ, and those live in the
// service. This is what keeps eight resources from being eight copies of
// the same handler file.
type ResourceHandler struct {
	svc    *service.ResourceService
	logger *slog.Logger
}

// NewResourceHandler creates a ResourceHandler for one resource.
func NewResourceHandler(svc *service.ResourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{svc: svc, logger: logger}
}

// HandleCreate stores a new document.
//
// HTTP: POST /{resource}
// RESPONSE: the stored document, including its generated id.
func (h *ResourceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.svc.Create(r.Context(), fields)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// HandleList returns every document in the collection, newest first.
//
// HTTP: GET /{resource}
func (h *ResourceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// HandleListMine returns the caller's own documents, matched on the
// document's "email" field.
//
// HTTP: GET /my{resources}  (authenticated)
//
// Same ownership rule as /myprofile: the email comes from the first field
// of the Authorization header (or the optional ?email= query) and must
// match the authenticated identity, otherwise 403.
func (h *ResourceHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email = auth.HeaderSubject(r)
	}
	if !callerOwns(r, email) {
		writeError(w, apperror.Forbidden("Forbidden access"))
		return
	}

	docs, err := h.svc.ListByOwner(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// HandleGet returns a single document by id.
//
// HTTP: GET /{resource}/{id}
func (h *ResourceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// HandleUpdate merges the updatable fields of the body into the document.
//
// HTTP: PUT /{resource}/{id}
// RESPONSE: the document as stored after the merge.
func (h *ResourceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.svc.Update(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// HandleDelete removes a document by id.
//
// HTTP: DELETE /{resource}/{id}
func (h *ResourceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
