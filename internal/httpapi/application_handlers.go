package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/allocation"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/audit"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/auth"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/obs"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/stream"
)

type applyRequest struct {
	HousingID string `json:"housing_id"`
}

func (a *API) handleApplicationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listApplications(w, r)
	case http.MethodPost:
		a.apply(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleApplicationResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/applications/")
	id, action, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch action {
	case "approve", "reject":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		a.decide(w, r, id, action)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) apply(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireRole(w, r, auth.RoleStaff)
	if !ok {
		return
	}
	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.HousingID) == "" {
		writeError(w, r, http.StatusBadRequest, "housing_id is required")
		return
	}

	app, err := a.allocations.Apply(r.Context(), principal.SubjectID, req.HousingID)
	if err != nil {
		handleAllocationError(w, r, err)
		return
	}

	obs.ObserveAllocation("apply")
	a.refreshHousingGauge(r.Context())
	a.publishOccupancy(r.Context(), app.HousingID, "apply", housing.StatusBookedPending)
	_ = audit.LogEvent(r.Context(), "allocation.application.create", map[string]any{
		"application_id": app.ID,
		"housing_id":     app.HousingID,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Application submitted",
		"application": app,
	})
}

func (a *API) listApplications(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	q := allocation.Query{}
	// Staff only ever see their own application.
	if principal.Role != auth.RoleAdmin {
		q.EmployeeID = principal.SubjectID
	}
	apps, err := a.allocations.Applications(r.Context(), q)
	if err != nil {
		handleAllocationError(w, r, err)
		return
	}
	if apps == nil {
		apps = []allocation.Detail{}
	}
	writeJSON(w, http.StatusOK, apps)
}

func (a *API) decide(w http.ResponseWriter, r *http.Request, id, action string) {
	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}

	var (
		app allocation.Application
		err error
	)
	if action == "approve" {
		app, err = a.allocations.Approve(r.Context(), id)
	} else {
		app, err = a.allocations.Reject(r.Context(), id)
	}
	if err != nil {
		handleAllocationError(w, r, err)
		return
	}

	unitStatus := housing.StatusOccupied
	message := "Application approved"
	if action == "reject" {
		unitStatus = housing.StatusVacant
		message = "Application rejected"
	}

	obs.ObserveAllocation(action)
	a.refreshHousingGauge(r.Context())
	a.publishOccupancy(r.Context(), app.HousingID, action, unitStatus)
	_ = audit.LogEvent(r.Context(), "allocation.application."+action, map[string]any{
		"application_id": app.ID,
		"housing_id":     app.HousingID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     message,
		"application": app,
	})
}

// refreshHousingGauge republishes unit counts by status after a mutation.
func (a *API) refreshHousingGauge(ctx context.Context) {
	if a.dashboard == nil {
		return
	}
	st, err := a.dashboard.Stats(ctx)
	if err != nil {
		return
	}
	obs.SetHousingUnits(string(housing.StatusVacant), float64(st.Vacant))
	obs.SetHousingUnits(string(housing.StatusBookedPending), float64(st.BookedPending))
	obs.SetHousingUnits(string(housing.StatusOccupied), float64(st.Occupied))
}

func (a *API) publishOccupancy(ctx context.Context, unitID, action string, status housing.OccupancyStatus) {
	if a.stream == nil {
		return
	}
	evt := stream.OccupancyEvent{
		UnitID:    unitID,
		Action:    action,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if a.inventory != nil {
		if unit, err := a.inventory.GetUnit(ctx, unitID); err == nil {
			evt.TownLocation = unit.TownLocation
			evt.BlockName = unit.BlockName
		}
	}
	a.stream.Publish(evt)
}

func handleAllocationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, allocation.ErrUnitNotVacant):
		writeError(w, r, http.StatusConflict, "This house is not available")
	case errors.Is(err, allocation.ErrAlreadyApplied):
		writeError(w, r, http.StatusConflict, "You already have an active application")
	case errors.Is(err, allocation.ErrAlreadyProcessed):
		writeError(w, r, http.StatusConflict, "Application has already been processed")
	case errors.Is(err, allocation.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "application or housing unit not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
