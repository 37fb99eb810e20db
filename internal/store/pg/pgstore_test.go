package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/allocation"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewFromDB(db), mock
}

func TestApplyHappyPath(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from employees").WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("select occupancy_status from housing_units").WithArgs("unit-1").
		WillReturnRows(sqlmock.NewRows([]string{"occupancy_status"}).AddRow("vacant"))
	mock.ExpectQuery("insert into applications").
		WithArgs(sqlmock.AnyArg(), "emp-1", "unit-1", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("update housing_units set occupancy_status").
		WithArgs("unit-1", "booked_pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, err := s.Apply(context.Background(), "emp-1", "unit-1")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.Status != allocation.StatusPending {
		t.Fatalf("status = %s, want pending", app.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyNonVacantRollsBack(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from employees").WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("select occupancy_status from housing_units").WithArgs("unit-1").
		WillReturnRows(sqlmock.NewRows([]string{"occupancy_status"}).AddRow("booked_pending"))
	mock.ExpectRollback()

	if _, err := s.Apply(context.Background(), "emp-1", "unit-1"); !errors.Is(err, allocation.ErrUnitNotVacant) {
		t.Fatalf("err = %v, want ErrUnitNotVacant", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyUniqueViolationMapsToAlreadyApplied(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from employees").WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("select occupancy_status from housing_units").WithArgs("unit-1").
		WillReturnRows(sqlmock.NewRows([]string{"occupancy_status"}).AddRow("vacant"))
	mock.ExpectQuery("insert into applications").
		WithArgs(sqlmock.AnyArg(), "emp-1", "unit-1", "pending").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "applications_employee_id_key"})
	mock.ExpectRollback()

	if _, err := s.Apply(context.Background(), "emp-1", "unit-1"); !errors.Is(err, allocation.ErrAlreadyApplied) {
		t.Fatalf("err = %v, want ErrAlreadyApplied", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRejectDeletesRowAndFreesUnit(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select id, employee_id, housing_id").WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "employee_id", "housing_id", "application_status", "created_at"}).
			AddRow("app-1", "emp-1", "unit-1", "pending", time.Now()))
	mock.ExpectExec("delete from applications").WithArgs("app-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update housing_units set occupancy_status").
		WithArgs("unit-1", "vacant").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, err := s.Reject(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if app.Status != allocation.StatusRejected {
		t.Fatalf("status = %s, want rejected", app.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApproveProcessedApplication(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select id, employee_id, housing_id").WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "employee_id", "housing_id", "application_status", "created_at"}).
			AddRow("app-1", "emp-1", "unit-1", "approved", time.Now()))
	mock.ExpectRollback()

	if _, err := s.Approve(context.Background(), "app-1"); !errors.Is(err, allocation.ErrAlreadyProcessed) {
		t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteUnitNotVacant(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select occupancy_status from housing_units").WithArgs("unit-1").
		WillReturnRows(sqlmock.NewRows([]string{"occupancy_status"}).AddRow("occupied"))
	mock.ExpectRollback()

	if err := s.DeleteUnit(context.Background(), "unit-1"); !errors.Is(err, housing.ErrNotVacant) {
		t.Fatalf("err = %v, want ErrNotVacant", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStatsScansAllCounters(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("select").WillReturnRows(sqlmock.NewRows(
		[]string{"total", "vacant", "booked", "occupied", "pending", "employees"}).
		AddRow(10, 4, 2, 4, 2, 7))

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalUnits != 10 || st.BookedPending != 2 || st.TotalEmployees != 7 {
		t.Fatalf("stats = %+v", st)
	}
}
