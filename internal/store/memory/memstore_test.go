package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/allocation"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/ids"
)

func seedEmployer(t *testing.T, s *Store) *identity.Employer {
	t.Helper()
	e := &identity.Employer{
		ID:           ids.New(),
		EmployerCode: "KPS-001",
		Name:         "Kenya Prisons Service",
		Authorized:   true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Employers(context.Background()).Create(context.Background(), e); err != nil {
		t.Fatalf("seed employer: %v", err)
	}
	return e
}

func seedEmployee(t *testing.T, s *Store, employerID, code string) *identity.Employee {
	t.Helper()
	e := &identity.Employee{
		ID:           ids.New(),
		EmployeeCode: code,
		PasswordHash: "x",
		FullName:     "Test Person",
		Gender:       "female",
		DateOfBirth:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		EmployerID:   employerID,
		CreatedAt:    time.Now().UTC(),
	}
	e.YearOfEmployment = 2015
	if err := s.Employees(context.Background()).Create(context.Background(), e); err != nil {
		t.Fatalf("seed employee %s: %v", code, err)
	}
	return e
}

func seedUnit(t *testing.T, s *Store, htID, town, block string, floor int, rent int64) housing.Unit {
	t.Helper()
	u, err := s.CreateUnit(context.Background(), housing.NewUnit{
		County:                "Nairobi",
		TownLocation:          town,
		BlockName:             block,
		FloorNumber:           floor,
		HouseTypeID:           htID,
		MonthlyRent:           rent,
		PaymentDurationMonths: 12,
	})
	if err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	return u
}

func TestApplyMarksUnitBookedPending(t *testing.T) {
	s := New()
	ht := s.AddHouseType("Bedsitter")
	employer := seedEmployer(t, s)
	emp := seedEmployee(t, s, employer.ID, "EMP-1")
	unit := seedUnit(t, s, ht.ID, "Nairobi West", "Block A", 1, 1500000)

	app, err := s.Apply(context.Background(), emp.ID, unit.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.Status != allocation.StatusPending {
		t.Fatalf("status = %s, want pending", app.Status)
	}
	got, err := s.GetUnit(context.Background(), unit.ID)
	if err != nil {
		t.Fatalf("get unit: %v", err)
	}
	if got.OccupancyStatus != housing.StatusBookedPending {
		t.Fatalf("unit status = %s, want booked_pending", got.OccupancyStatus)
	}
}

func TestApplyConcurrentOneWinner(t *testing.T) {
	s := New()
	ht := s.AddHouseType("Bedsitter")
	employer := seedEmployer(t, s)
	unit := seedUnit(t, s, ht.ID, "Nairobi West", "Block A", 1, 1500000)

	const n = 16
	employees := make([]*identity.Employee, n)
	for i := range employees {
		employees[i] = seedEmployee(t, s, employer.ID, fmt.Sprintf("EMP-%d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Apply(context.Background(), employees[i].ID, unit.ID)
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, allocation.ErrUnitNotVacant):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}
	if lost != n-1 {
		t.Fatalf("losers = %d, want %d", lost, n-1)
	}
}

func TestApplyTwiceSameEmployee(t *testing.T) {
	s := New()
	ht := s.AddHouseType("Bedsitter")
	employer := seedEmployer(t, s)
	emp := seedEmployee(t, s, employer.ID, "EMP-1")
	first := seedUnit(t, s, ht.ID, "Nairobi West", "Block A", 1, 1500000)
	second := seedUnit(t, s, ht.ID, "Nairobi West", "Block A", 2, 1500000)

	if _, err := s.Apply(context.Background(), emp.ID, first.ID); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := s.Apply(context.Background(), emp.ID, second.ID); !errors.Is(err, allocation.ErrAlreadyApplied) {
		t.Fatalf("second apply err = %v, want ErrAlreadyApplied", err)
	}
	// The second unit stays vacant, only the applied-for unit is held.
	got, _ := s.GetUnit(context.Background(), second.ID)
	if got.OccupancyStatus != housing.StatusVacant {
		t.Fatalf("bystander unit status = %s, want vacant", got.OccupancyStatus)
	}
}

func TestRejectReleasesUnitAndAllowsReapply(t *testing.T) {
	s := New()
	ht := s.AddHouseType("1 Bedroom")
	employer := seedEmployer(t, s)
	emp := seedEmployee(t, s, employer.ID, "EMP-1")
	unit := seedUnit(t, s, ht.ID, "Langata", "Block C", 3, 2200000)

	app, err := s.Apply(context.Background(), emp.ID, unit.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	rejected, err := s.Reject(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != allocation.StatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}

	got, _ := s.GetUnit(context.Background(), unit.ID)
	if got.OccupancyStatus != housing.StatusVacant {
		t.Fatalf("unit status = %s, want vacant", got.OccupancyStatus)
	}
	if _, err := s.Apply(context.Background(), emp.ID, unit.ID); err != nil {
		t.Fatalf("reapply after reject: %v", err)
	}
}

func TestApproveIsTerminal(t *testing.T) {
	s := New()
	ht := s.AddHouseType("2 Bedroom")
	employer := seedEmployer(t, s)
	emp := seedEmployee(t, s, employer.ID, "EMP-1")
	other := seedEmployee(t, s, employer.ID, "EMP-2")
	unit := seedUnit(t, s, ht.ID, "Kilimani", "Block B", 2, 3500000)
	spare := seedUnit(t, s, ht.ID, "Kilimani", "Block B", 4, 3500000)

	app, err := s.Apply(context.Background(), emp.ID, unit.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	approved, err := s.Approve(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != allocation.StatusApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}

	got, _ := s.GetUnit(context.Background(), unit.ID)
	if got.OccupancyStatus != housing.StatusOccupied {
		t.Fatalf("unit status = %s, want occupied", got.OccupancyStatus)
	}

	if _, err := s.Approve(context.Background(), app.ID); !errors.Is(err, allocation.ErrAlreadyProcessed) {
		t.Fatalf("re-approve err = %v, want ErrAlreadyProcessed", err)
	}
	if _, err := s.Reject(context.Background(), app.ID); !errors.Is(err, allocation.ErrAlreadyProcessed) {
		t.Fatalf("reject after approve err = %v, want ErrAlreadyProcessed", err)
	}
	// The approved row persists and keeps blocking new applications.
	if _, err := s.Apply(context.Background(), emp.ID, spare.ID); !errors.Is(err, allocation.ErrAlreadyApplied) {
		t.Fatalf("apply after approve err = %v, want ErrAlreadyApplied", err)
	}
	// Other employees are unaffected.
	if _, err := s.Apply(context.Background(), other.ID, spare.ID); err != nil {
		t.Fatalf("other employee apply: %v", err)
	}
}

func TestDeleteUnitGuard(t *testing.T) {
	s := New()
	ht := s.AddHouseType("Bedsitter")
	employer := seedEmployer(t, s)
	emp := seedEmployee(t, s, employer.ID, "EMP-1")
	booked := seedUnit(t, s, ht.ID, "Nairobi West", "Block A", 1, 1500000)
	vacant := seedUnit(t, s, ht.ID, "Nairobi West", "Block A", 2, 1500000)

	if _, err := s.Apply(context.Background(), emp.ID, booked.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := s.DeleteUnit(context.Background(), booked.ID); !errors.Is(err, housing.ErrNotVacant) {
		t.Fatalf("delete booked err = %v, want ErrNotVacant", err)
	}
	if err := s.DeleteUnit(context.Background(), vacant.ID); err != nil {
		t.Fatalf("delete vacant: %v", err)
	}
	if _, err := s.GetUnit(context.Background(), vacant.ID); !errors.Is(err, housing.ErrNotFound) {
		t.Fatalf("get deleted err = %v, want ErrNotFound", err)
	}
}

func TestListUnitsFilterAndOrder(t *testing.T) {
	s := New()
	bedsitter := s.AddHouseType("Bedsitter")
	oneBed := s.AddHouseType("1 Bedroom")

	seedUnit(t, s, bedsitter.ID, "Langata", "Block B", 2, 1200000)
	seedUnit(t, s, bedsitter.ID, "Kilimani", "Block A", 1, 1500000)
	seedUnit(t, s, oneBed.ID, "Kilimani", "Block A", 3, 2500000)
	seedUnit(t, s, oneBed.ID, "Kilimani", "Block C", 1, 2400000)

	all, err := s.ListUnits(context.Background(), housing.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
	// Ordered by town, block, floor.
	if all[0].TownLocation != "Kilimani" || all[0].BlockName != "Block A" || all[0].FloorNumber != 1 {
		t.Fatalf("unexpected first unit: %+v", all[0])
	}
	if all[3].TownLocation != "Langata" {
		t.Fatalf("unexpected last unit: %+v", all[3])
	}

	maxRent := int64(2000000)
	cheap, err := s.ListUnits(context.Background(), housing.Filter{TownLocation: "Kilimani", MaxRent: &maxRent})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(cheap) != 1 || cheap[0].HouseTypeName != "Bedsitter" {
		t.Fatalf("filtered = %+v, want single Kilimani bedsitter", cheap)
	}
}

func TestFilterOptionsDistinctSorted(t *testing.T) {
	s := New()
	bedsitter := s.AddHouseType("Bedsitter")
	oneBed := s.AddHouseType("1 Bedroom")

	seedUnit(t, s, bedsitter.ID, "Langata", "Block B", 2, 1200000)
	seedUnit(t, s, bedsitter.ID, "Langata", "Block B", 2, 1300000)
	seedUnit(t, s, oneBed.ID, "Kilimani", "Block A", 1, 2500000)

	opts, err := s.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts.Towns) != 2 || opts.Towns[0] != "Kilimani" {
		t.Fatalf("towns = %v", opts.Towns)
	}
	if len(opts.Blocks) != 2 || len(opts.Floors) != 2 {
		t.Fatalf("blocks = %v floors = %v", opts.Blocks, opts.Floors)
	}
	if len(opts.HouseTypes) != 2 || opts.HouseTypes[0].Name != "1 Bedroom" {
		t.Fatalf("house types = %v", opts.HouseTypes)
	}
}

func TestApplicationsNewestFirstWithDetail(t *testing.T) {
	s := New()
	ht := s.AddHouseType("Bedsitter")
	employer := seedEmployer(t, s)
	first := seedEmployee(t, s, employer.ID, "EMP-1")
	second := seedEmployee(t, s, employer.ID, "EMP-2")
	unitA := seedUnit(t, s, ht.ID, "Langata", "Block B", 2, 1200000)
	unitB := seedUnit(t, s, ht.ID, "Kilimani", "Block A", 1, 1500000)

	if _, err := s.Apply(context.Background(), first.ID, unitA.ID); err != nil {
		t.Fatalf("apply first: %v", err)
	}
	if _, err := s.Apply(context.Background(), second.ID, unitB.ID); err != nil {
		t.Fatalf("apply second: %v", err)
	}

	apps, err := s.Applications(context.Background(), allocation.Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("len = %d, want 2", len(apps))
	}
	if apps[0].EmployeeID != second.ID {
		t.Fatalf("first row employee = %s, want the later applicant", apps[0].EmployeeID)
	}
	if apps[0].EmployerName != "Kenya Prisons Service" || apps[0].HouseTypeName != "Bedsitter" {
		t.Fatalf("detail not joined: %+v", apps[0])
	}

	mine, err := s.Applications(context.Background(), allocation.Query{EmployeeID: first.ID})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].EmployeeCode != "EMP-1" {
		t.Fatalf("mine = %+v", mine)
	}
}

func TestStats(t *testing.T) {
	s := New()
	ht := s.AddHouseType("Bedsitter")
	employer := seedEmployer(t, s)
	emp := seedEmployee(t, s, employer.ID, "EMP-1")
	other := seedEmployee(t, s, employer.ID, "EMP-2")
	u1 := seedUnit(t, s, ht.ID, "Langata", "Block B", 1, 1200000)
	u2 := seedUnit(t, s, ht.ID, "Langata", "Block B", 2, 1200000)
	seedUnit(t, s, ht.ID, "Langata", "Block B", 3, 1200000)

	app, err := s.Apply(context.Background(), emp.ID, u1.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := s.Approve(context.Background(), app.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := s.Apply(context.Background(), other.ID, u2.ID); err != nil {
		t.Fatalf("apply other: %v", err)
	}

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalUnits != 3 || st.Vacant != 1 || st.BookedPending != 1 || st.Occupied != 1 {
		t.Fatalf("unit counts = %+v", st)
	}
	if st.PendingApplications != 1 || st.TotalEmployees != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestEmployerDuplicateCode(t *testing.T) {
	s := New()
	seedEmployer(t, s)
	dup := &identity.Employer{ID: ids.New(), EmployerCode: "KPS-001", Name: "Duplicate"}
	if err := s.Employers(context.Background()).Create(context.Background(), dup); !errors.Is(err, identity.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}
