package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/audit"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/auth"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
)

type registerRequest struct {
	EmployeeID       string `json:"employee_id"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"date_of_birth"`
	YearOfEmployment int    `json:"year_of_employment"`
	EmployerID       string `json:"employer_id"`
}

type loginRequest struct {
	EmployeeID string `json:"employee_id,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password"`
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    any    `json:"user"`
}

func (a *API) handleEmployeeRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var dob time.Time
	if req.DateOfBirth != "" {
		var err error
		dob, err = time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
			return
		}
	}

	employee, err := a.identity.RegisterEmployee(r.Context(), identity.Registration{
		EmployeeCode:     req.EmployeeID,
		Password:         req.Password,
		FullName:         req.FullName,
		Gender:           req.Gender,
		DateOfBirth:      dob,
		YearOfEmployment: req.YearOfEmployment,
		EmployerID:       req.EmployerID,
	})
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(employee.ID, employee.EmployeeCode, auth.RoleStaff, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "identity.employee.register", map[string]any{
		"employee_id":   employee.ID,
		"employee_code": employee.EmployeeCode,
		"employer_id":   employee.EmployerID,
	})

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "Registration successful",
		Token:   token,
		User:    employee,
	})
}

func (a *API) handleEmployeeLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	employee, err := a.identity.AuthenticateEmployee(r.Context(), req.EmployeeID, req.Password)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}
	token, err := auth.GenerateToken(employee.ID, employee.EmployeeCode, auth.RoleStaff, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "identity.employee.login", map[string]any{
		"employee_id": employee.ID,
	})

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User:    employee,
	})
}

func (a *API) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	admin, err := a.identity.AuthenticateAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}
	token, err := auth.GenerateToken(admin.ID, admin.Username, auth.RoleAdmin, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "identity.admin.login", map[string]any{
		"admin_id": admin.ID,
	})

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User:    admin,
	})
}

func handleIdentityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, identity.ErrEmployerNotAuthorized):
		writeError(w, r, http.StatusForbidden, "Your employer is not authorized for housing at this time")
	case errors.Is(err, identity.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "Employee ID already registered")
	case errors.Is(err, identity.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
