// Package memory implements every store interface in-process behind a single
// mutex. It backs the API when no database DSN is configured and the HTTP
// tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/allocation"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/dashboard"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/ids"
)

// Store holds all entities in maps. The one mutex is the serialization point
// standing in for the database's transaction isolation.
type Store struct {
	mu sync.RWMutex

	employers      map[string]*identity.Employer
	employerByCode map[string]string
	employees      map[string]*identity.Employee
	employeeByCode map[string]string
	admins         map[string]*identity.Admin // keyed by username

	houseTypes map[string]housing.HouseType
	units      map[string]*housing.Unit

	applications  map[string]*allocation.Application
	appByEmployee map[string]string
}

var (
	_ allocation.Service = (*Store)(nil)
	_ housing.Inventory  = (*Store)(nil)
	_ identity.Store     = (*Store)(nil)
	_ dashboard.Service  = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		employers:      make(map[string]*identity.Employer),
		employerByCode: make(map[string]string),
		employees:      make(map[string]*identity.Employee),
		employeeByCode: make(map[string]string),
		admins:         make(map[string]*identity.Admin),
		houseTypes:     make(map[string]housing.HouseType),
		units:          make(map[string]*housing.Unit),
		applications:   make(map[string]*allocation.Application),
		appByEmployee:  make(map[string]string),
	}
}

// AddHouseType registers a house type by name, reusing an existing entry.
// Reference data normally comes from seed SQL; the memory store seeds it here.
func (s *Store) AddHouseType(name string) housing.HouseType {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ht := range s.houseTypes {
		if ht.Name == name {
			return ht
		}
	}
	ht := housing.HouseType{ID: ids.New(), Name: name}
	s.houseTypes[ht.ID] = ht
	return ht
}

// --- allocation.Service ---

func (s *Store) Apply(ctx context.Context, employeeID, unitID string) (allocation.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appByEmployee[employeeID]; ok {
		return allocation.Application{}, allocation.ErrAlreadyApplied
	}
	if _, ok := s.employees[employeeID]; !ok {
		return allocation.Application{}, allocation.ErrNotFound
	}
	unit, ok := s.units[unitID]
	if !ok {
		return allocation.Application{}, allocation.ErrNotFound
	}
	if unit.OccupancyStatus != housing.StatusVacant {
		return allocation.Application{}, allocation.ErrUnitNotVacant
	}

	app := &allocation.Application{
		ID:         ids.New(),
		EmployeeID: employeeID,
		HousingID:  unitID,
		Status:     allocation.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	s.applications[app.ID] = app
	s.appByEmployee[employeeID] = app.ID
	unit.OccupancyStatus = housing.StatusBookedPending
	return *app, nil
}

func (s *Store) Approve(ctx context.Context, applicationID string) (allocation.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[applicationID]
	if !ok {
		return allocation.Application{}, allocation.ErrNotFound
	}
	if app.Status != allocation.StatusPending {
		return allocation.Application{}, allocation.ErrAlreadyProcessed
	}
	app.Status = allocation.StatusApproved
	if unit, ok := s.units[app.HousingID]; ok {
		unit.OccupancyStatus = housing.StatusOccupied
	}
	return *app, nil
}

func (s *Store) Reject(ctx context.Context, applicationID string) (allocation.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[applicationID]
	if !ok {
		return allocation.Application{}, allocation.ErrNotFound
	}
	if app.Status != allocation.StatusPending {
		return allocation.Application{}, allocation.ErrAlreadyProcessed
	}
	if unit, ok := s.units[app.HousingID]; ok {
		unit.OccupancyStatus = housing.StatusVacant
	}
	out := *app
	out.Status = allocation.StatusRejected
	delete(s.applications, app.ID)
	delete(s.appByEmployee, app.EmployeeID)
	return out, nil
}

func (s *Store) Applications(ctx context.Context, q allocation.Query) ([]allocation.Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []allocation.Detail
	for _, app := range s.applications {
		if q.EmployeeID != "" && app.EmployeeID != q.EmployeeID {
			continue
		}
		res = append(res, s.detailLocked(app))
	}
	// Newest first; ULIDs are time-ordered, so the id breaks created_at ties.
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (s *Store) detailLocked(app *allocation.Application) allocation.Detail {
	d := allocation.Detail{Application: *app}
	if employee, ok := s.employees[app.EmployeeID]; ok {
		d.EmployeeCode = employee.EmployeeCode
		d.FullName = employee.FullName
		d.Gender = employee.Gender
		if employer, ok := s.employers[employee.EmployerID]; ok {
			d.EmployerName = employer.Name
		}
	}
	if unit, ok := s.units[app.HousingID]; ok {
		d.County = unit.County
		d.TownLocation = unit.TownLocation
		d.BlockName = unit.BlockName
		d.FloorNumber = unit.FloorNumber
		d.MonthlyRent = unit.MonthlyRent
		d.PaymentDurationMonths = unit.PaymentDurationMonths
		if ht, ok := s.houseTypes[unit.HouseTypeID]; ok {
			d.HouseTypeName = ht.Name
		}
	}
	return d
}

// --- housing.Inventory ---

func (s *Store) CreateUnit(ctx context.Context, n housing.NewUnit) (housing.Unit, error) {
	if err := n.Validate(); err != nil {
		return housing.Unit{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ht, ok := s.houseTypes[n.HouseTypeID]
	if !ok {
		return housing.Unit{}, housing.ErrUnknownHouseType
	}
	unit := &housing.Unit{
		ID:                    ids.New(),
		County:                strings.TrimSpace(n.County),
		TownLocation:          strings.TrimSpace(n.TownLocation),
		BlockName:             strings.TrimSpace(n.BlockName),
		FloorNumber:           n.FloorNumber,
		HouseTypeID:           n.HouseTypeID,
		MonthlyRent:           n.MonthlyRent,
		PaymentDurationMonths: n.PaymentDurationMonths,
		OccupancyStatus:       housing.StatusVacant,
		CreatedAt:             time.Now().UTC(),
	}
	s.units[unit.ID] = unit

	out := *unit
	out.HouseTypeName = ht.Name
	return out, nil
}

func (s *Store) GetUnit(ctx context.Context, id string) (housing.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unit, ok := s.units[id]
	if !ok {
		return housing.Unit{}, housing.ErrNotFound
	}
	out := *unit
	if ht, ok := s.houseTypes[unit.HouseTypeID]; ok {
		out.HouseTypeName = ht.Name
	}
	return out, nil
}

func (s *Store) ListUnits(ctx context.Context, f housing.Filter) ([]housing.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []housing.Unit
	for _, unit := range s.units {
		if !f.Matches(*unit) {
			continue
		}
		out := *unit
		if ht, ok := s.houseTypes[unit.HouseTypeID]; ok {
			out.HouseTypeName = ht.Name
		}
		res = append(res, out)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].TownLocation != res[j].TownLocation {
			return res[i].TownLocation < res[j].TownLocation
		}
		if res[i].BlockName != res[j].BlockName {
			return res[i].BlockName < res[j].BlockName
		}
		return res[i].FloorNumber < res[j].FloorNumber
	})
	return res, nil
}

func (s *Store) UpdateUnit(ctx context.Context, id string, p housing.Patch) (housing.Unit, error) {
	if err := p.Validate(); err != nil {
		return housing.Unit{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, ok := s.units[id]
	if !ok {
		return housing.Unit{}, housing.ErrNotFound
	}
	if p.HouseTypeID != nil {
		if _, ok := s.houseTypes[*p.HouseTypeID]; !ok {
			return housing.Unit{}, housing.ErrUnknownHouseType
		}
	}
	p.Apply(unit)

	out := *unit
	if ht, ok := s.houseTypes[unit.HouseTypeID]; ok {
		out.HouseTypeName = ht.Name
	}
	return out, nil
}

func (s *Store) DeleteUnit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, ok := s.units[id]
	if !ok {
		return housing.ErrNotFound
	}
	if unit.OccupancyStatus != housing.StatusVacant {
		return housing.ErrNotVacant
	}
	delete(s.units, id)
	return nil
}

func (s *Store) FilterOptions(ctx context.Context) (housing.FilterOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	townSet := map[string]struct{}{}
	blockSet := map[string]struct{}{}
	floorSet := map[int]struct{}{}
	for _, unit := range s.units {
		townSet[unit.TownLocation] = struct{}{}
		blockSet[unit.BlockName] = struct{}{}
		floorSet[unit.FloorNumber] = struct{}{}
	}

	opts := housing.FilterOptions{
		Towns:  make([]string, 0, len(townSet)),
		Blocks: make([]string, 0, len(blockSet)),
		Floors: make([]int, 0, len(floorSet)),
	}
	for t := range townSet {
		opts.Towns = append(opts.Towns, t)
	}
	for b := range blockSet {
		opts.Blocks = append(opts.Blocks, b)
	}
	for f := range floorSet {
		opts.Floors = append(opts.Floors, f)
	}
	sort.Strings(opts.Towns)
	sort.Strings(opts.Blocks)
	sort.Ints(opts.Floors)

	for _, ht := range s.houseTypes {
		opts.HouseTypes = append(opts.HouseTypes, ht)
	}
	sort.Slice(opts.HouseTypes, func(i, j int) bool {
		return opts.HouseTypes[i].Name < opts.HouseTypes[j].Name
	})
	return opts, nil
}

// --- dashboard.Service ---

func (s *Store) Stats(ctx context.Context) (dashboard.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st dashboard.Stats
	for _, unit := range s.units {
		st.TotalUnits++
		switch unit.OccupancyStatus {
		case housing.StatusVacant:
			st.Vacant++
		case housing.StatusBookedPending:
			st.BookedPending++
		case housing.StatusOccupied:
			st.Occupied++
		}
	}
	for _, app := range s.applications {
		if app.Status == allocation.StatusPending {
			st.PendingApplications++
		}
	}
	st.TotalEmployees = int64(len(s.employees))
	return st, nil
}
