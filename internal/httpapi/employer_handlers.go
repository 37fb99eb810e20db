package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/audit"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/auth"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
)

type createEmployerRequest struct {
	EmployerCode string `json:"employer_code"`
	EmployerName string `json:"employer_name"`
}

func (a *API) handleEmployersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listEmployers(w, r)
	case http.MethodPost:
		a.createEmployer(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEmployerResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/employers/")
	id, rest, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if rest == "authorize" {
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		a.toggleEmployerAuthorization(w, r, id)
		return
	}
	writeError(w, r, http.StatusNotFound, "resource not found")
}

func (a *API) listEmployers(w http.ResponseWriter, r *http.Request) {
	employers, err := a.identity.ListEmployers(r.Context())
	if err != nil {
		handleEmployerError(w, r, err)
		return
	}
	if employers == nil {
		employers = []*identity.Employer{}
	}
	writeJSON(w, http.StatusOK, employers)
}

func (a *API) createEmployer(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}
	var req createEmployerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	employer, err := a.identity.CreateEmployer(r.Context(), req.EmployerCode, req.EmployerName)
	if err != nil {
		handleEmployerError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "identity.employer.create", map[string]any{
		"employer_id":   employer.ID,
		"employer_code": employer.EmployerCode,
	})

	w.Header().Set("Location", "/api/employers/"+employer.ID)
	writeJSON(w, http.StatusCreated, employer)
}

func (a *API) toggleEmployerAuthorization(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}
	employer, err := a.identity.ToggleAuthorization(r.Context(), id)
	if err != nil {
		handleEmployerError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "identity.employer.authorize", map[string]any{
		"employer_id": employer.ID,
		"authorized":  employer.Authorized,
	})

	writeJSON(w, http.StatusOK, employer)
}

func handleEmployerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "Employer code already registered")
	case errors.Is(err, identity.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "employer not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
