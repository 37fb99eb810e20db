package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/audit"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/auth"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
)

func (a *API) handleHousingCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listHousing(w, r)
	case http.MethodPost:
		a.createHousing(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleHousingResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/housing/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getHousing(w, r, id)
	case http.MethodPut:
		a.updateHousing(w, r, id)
	case http.MethodDelete:
		a.deleteHousing(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	opts, err := a.inventory.FilterOptions(r.Context())
	if err != nil {
		handleHousingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (a *API) listHousing(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	filter, err := parseHousingFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	units, err := a.inventory.ListUnits(r.Context(), filter)
	if err != nil {
		handleHousingError(w, r, err)
		return
	}
	if units == nil {
		units = []housing.Unit{}
	}
	writeJSON(w, http.StatusOK, units)
}

func (a *API) getHousing(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	unit, err := a.inventory.GetUnit(r.Context(), id)
	if err != nil {
		handleHousingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

func (a *API) createHousing(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}
	var req housing.NewUnit
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	unit, err := a.inventory.CreateUnit(r.Context(), req)
	if err != nil {
		handleHousingError(w, r, err)
		return
	}

	a.refreshHousingGauge(r.Context())
	_ = audit.LogEvent(r.Context(), "housing.unit.create", map[string]any{
		"unit_id":       unit.ID,
		"town_location": unit.TownLocation,
		"block_name":    unit.BlockName,
	})

	w.Header().Set("Location", "/api/housing/"+unit.ID)
	writeJSON(w, http.StatusCreated, unit)
}

func (a *API) updateHousing(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}
	var req housing.Patch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	unit, err := a.inventory.UpdateUnit(r.Context(), id, req)
	if err != nil {
		handleHousingError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "housing.unit.update", map[string]any{
		"unit_id": unit.ID,
	})

	writeJSON(w, http.StatusOK, unit)
}

func (a *API) deleteHousing(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}
	if err := a.inventory.DeleteUnit(r.Context(), id); err != nil {
		handleHousingError(w, r, err)
		return
	}

	a.refreshHousingGauge(r.Context())
	_ = audit.LogEvent(r.Context(), "housing.unit.delete", map[string]any{
		"unit_id": id,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Housing unit deleted",
	})
}

func parseHousingFilter(r *http.Request) (housing.Filter, error) {
	q := r.URL.Query()
	f := housing.Filter{
		TownLocation: strings.TrimSpace(q.Get("town_location")),
		BlockName:    strings.TrimSpace(q.Get("block_name")),
		HouseTypeID:  strings.TrimSpace(q.Get("house_type_id")),
	}
	if raw := strings.TrimSpace(q.Get("floor_number")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return housing.Filter{}, errors.New("floor_number must be a non-negative integer")
		}
		f.FloorNumber = &v
	}
	if raw := strings.TrimSpace(q.Get("min_rent")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return housing.Filter{}, errors.New("min_rent must be a non-negative integer")
		}
		f.MinRent = &v
	}
	if raw := strings.TrimSpace(q.Get("max_rent")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return housing.Filter{}, errors.New("max_rent must be a non-negative integer")
		}
		f.MaxRent = &v
	}
	return f, nil
}

func handleHousingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, housing.ErrInvalidInput), errors.Is(err, housing.ErrUnknownHouseType):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, housing.ErrNotVacant):
		writeError(w, r, http.StatusConflict, "Cannot delete a housing unit that is not vacant")
	case errors.Is(err, housing.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "housing unit not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
