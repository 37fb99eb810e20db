// Package pg is the PostgreSQL-backed store. It runs over database/sql with
// the pgx stdlib driver; the allocation workflow relies on row locks plus the
// unique employee constraint on applications for its atomicity guarantees.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/allocation"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/dashboard"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/ids"
)

type Store struct {
	db *sql.DB
}

var (
	_ allocation.Service = (*Store)(nil)
	_ housing.Inventory  = (*Store)(nil)
	_ identity.Store     = (*Store)(nil)
	_ dashboard.Service  = (*Store)(nil)
)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing handle; used by tests and the migrator.
func NewFromDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (s *Store) Apply(ctx context.Context, employeeID, unitID string) (allocation.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return allocation.Application{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var dummy int
	if err := tx.QueryRowContext(ctx,
		`select 1 from employees where id=$1`, employeeID).Scan(&dummy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return allocation.Application{}, allocation.ErrNotFound
		}
		return allocation.Application{}, err
	}

	// Lock the unit row; concurrent applicants queue here and all but the
	// first see a non-vacant status.
	var status housing.OccupancyStatus
	if err := tx.QueryRowContext(ctx,
		`select occupancy_status from housing_units where id=$1 for update`, unitID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return allocation.Application{}, allocation.ErrNotFound
		}
		return allocation.Application{}, err
	}
	if status != housing.StatusVacant {
		return allocation.Application{}, allocation.ErrUnitNotVacant
	}

	app := allocation.Application{
		ID:         ids.New(),
		EmployeeID: employeeID,
		HousingID:  unitID,
		Status:     allocation.StatusPending,
	}
	if err := tx.QueryRowContext(ctx, `
		insert into applications(id, employee_id, housing_id, application_status)
		values ($1,$2,$3,$4) returning created_at
	`, app.ID, app.EmployeeID, app.HousingID, app.Status).Scan(&app.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return allocation.Application{}, allocation.ErrAlreadyApplied
		}
		return allocation.Application{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`update housing_units set occupancy_status=$2 where id=$1`,
		unitID, housing.StatusBookedPending); err != nil {
		return allocation.Application{}, err
	}
	if err := tx.Commit(); err != nil {
		return allocation.Application{}, err
	}
	return app, nil
}

func (s *Store) Approve(ctx context.Context, applicationID string) (allocation.Application, error) {
	return s.decide(ctx, applicationID, allocation.StatusApproved, housing.StatusOccupied)
}

func (s *Store) Reject(ctx context.Context, applicationID string) (allocation.Application, error) {
	return s.decide(ctx, applicationID, allocation.StatusRejected, housing.StatusVacant)
}

// decide moves a pending application to its decision and couples the unit
// status in the same transaction. Rejections delete the row so the employee
// can apply again; approvals keep it as the permanent allocation record.
func (s *Store) decide(ctx context.Context, applicationID string, to allocation.Status, unitStatus housing.OccupancyStatus) (allocation.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return allocation.Application{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var app allocation.Application
	if err := tx.QueryRowContext(ctx, `
		select id, employee_id, housing_id, application_status, created_at
		from applications where id=$1 for update
	`, applicationID).Scan(&app.ID, &app.EmployeeID, &app.HousingID, &app.Status, &app.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return allocation.Application{}, allocation.ErrNotFound
		}
		return allocation.Application{}, err
	}
	if app.Status != allocation.StatusPending {
		return allocation.Application{}, allocation.ErrAlreadyProcessed
	}

	if to == allocation.StatusRejected {
		if _, err := tx.ExecContext(ctx, `delete from applications where id=$1`, app.ID); err != nil {
			return allocation.Application{}, err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`update applications set application_status=$2 where id=$1`, app.ID, to); err != nil {
			return allocation.Application{}, err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`update housing_units set occupancy_status=$2 where id=$1`,
		app.HousingID, unitStatus); err != nil {
		return allocation.Application{}, err
	}
	if err := tx.Commit(); err != nil {
		return allocation.Application{}, err
	}
	app.Status = to
	return app, nil
}

func (s *Store) Applications(ctx context.Context, q allocation.Query) ([]allocation.Detail, error) {
	query := `
		select a.id, a.employee_id, a.housing_id, a.application_status, a.created_at,
		       e.employee_code, e.full_name, e.gender, er.employer_name,
		       h.county, h.town_location, h.block_name, h.floor_number,
		       h.monthly_rent, h.payment_duration_months, ht.name
		from applications a
		join employees e on e.id = a.employee_id
		join employers er on er.id = e.employer_id
		join housing_units h on h.id = a.housing_id
		join house_types ht on ht.id = h.house_type_id
	`
	args := []any{}
	if q.EmployeeID != "" {
		query += ` where a.employee_id = $1`
		args = append(args, q.EmployeeID)
	}
	query += ` order by a.created_at desc, a.id desc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []allocation.Detail
	for rows.Next() {
		var d allocation.Detail
		if err := rows.Scan(
			&d.ID, &d.EmployeeID, &d.HousingID, &d.Status, &d.CreatedAt,
			&d.EmployeeCode, &d.FullName, &d.Gender, &d.EmployerName,
			&d.County, &d.TownLocation, &d.BlockName, &d.FloorNumber,
			&d.MonthlyRent, &d.PaymentDurationMonths, &d.HouseTypeName,
		); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (dashboard.Stats, error) {
	var st dashboard.Stats
	err := s.db.QueryRowContext(ctx, `
		select
			(select count(*) from housing_units),
			(select count(*) from housing_units where occupancy_status='vacant'),
			(select count(*) from housing_units where occupancy_status='booked_pending'),
			(select count(*) from housing_units where occupancy_status='occupied'),
			(select count(*) from applications where application_status='pending'),
			(select count(*) from employees)
	`).Scan(&st.TotalUnits, &st.Vacant, &st.BookedPending, &st.Occupied,
		&st.PendingApplications, &st.TotalEmployees)
	if err != nil {
		return dashboard.Stats{}, err
	}
	return st, nil
}
