package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/auth"
	"github.com/hasan-mia/manufacturer-server/internal/model"
	"github.com/hasan-mia/manufacturer-server/internal/service"
)

// UserHandler owns the identity endpoints: sign-in, profiles, and the
// admin role. Everything else in the API keys off the email these
// endpoints establish.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleSignIn upserts the caller's profile and issues their API token.
//
// HTTP: PUT /signin/{email}
// REQUEST BODY: {"name": "...", "phone": "...", ...} (any profile fields)
// RESPONSE: {"result": {"created": bool}, "token": "<jwt>"}
//
// This is the only way to obtain a token, and it is deliberately public:
// identity is established by the frontend's auth provider, and the token
// just carries the email forward. Sending a role here does nothing — the
// admin role is only granted through HandlePromoteAdmin.
func (h *UserHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	var profile model.User
	if err := decodeBody(r, &profile); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.users.SignIn(r.Context(), email, profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleUpdateProfile merges profile fields into the record at the path
// email, creating it when absent — the same upsert sign-in runs, minus the
// token. Like sign-in, a role in the body never lands.
//
// HTTP: PUT /user/{email}
//
// Protection is policy-driven (open by default, as the site shipped).
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	var profile model.User
	if err := decodeBody(r, &profile); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.users.UpdateProfile(r.Context(), email, profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleMyProfile returns the caller's own record.
//
// HTTP: GET /myprofile  (authenticated)
//
// The owner's email is the first field of the Authorization header (the
// optional ?email= query overrides it) and must match the token's email;
// a mismatch is a 403, same as a bad token.
func (h *UserHandler) HandleMyProfile(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email = auth.HeaderSubject(r)
	}
	if !callerOwns(r, email) {
		writeError(w, apperror.Forbidden("Forbidden access"))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleList returns every registered user.
//
// HTTP: GET /users  (policy-driven; open by default)
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleIsAdmin reports whether an email holds the admin role. The
// frontend uses this to decide which dashboard to render; the backend
// never trusts it — admin routes re-check the role server-side.
//
// HTTP: GET /admin/{email}
// RESPONSE: {"admin": true|false}
func (h *UserHandler) HandleIsAdmin(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	isAdmin, err := h.users.IsAdmin(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"admin": isAdmin})
}

// HandlePromoteAdmin grants the admin role to an existing user.
//
// HTTP: PUT /user/admin/{email}  (admin only)
func (h *UserHandler) HandlePromoteAdmin(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	if err := h.users.PromoteAdmin(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes a user record entirely.
//
// HTTP: DELETE /delete-admin/{email}  (admin only)
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	if err := h.users.Delete(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// callerOwns reports whether the authenticated caller is the owner of the
// given email. Two checks, both required: the email decoded from the token
// must match, and so must the identity the Authorization header itself
// names — the frontend sends "Authorization: <email> <token>" and the two
// halves have to agree.
func callerOwns(r *http.Request, email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	tokenEmail, ok := auth.EmailFromContext(r.Context())
	if !ok || tokenEmail != email {
		return false
	}
	return auth.HeaderSubject(r) == email
}
