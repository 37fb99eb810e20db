package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
)

func (s *Store) Employers(ctx context.Context) identity.EmployerStore { return employerStore{s.db} }
func (s *Store) Employees(ctx context.Context) identity.EmployeeStore { return employeeStore{s.db} }
func (s *Store) Admins(ctx context.Context) identity.AdminStore       { return adminStore{s.db} }

type employerStore struct{ db *sql.DB }

func (es employerStore) Create(ctx context.Context, e *identity.Employer) error {
	err := es.db.QueryRowContext(ctx, `
		insert into employers(id, employer_code, employer_name, authorized)
		values ($1,$2,$3,$4) returning created_at
	`, e.ID, e.EmployerCode, e.Name, e.Authorized).Scan(&e.CreatedAt)
	if isUniqueViolation(err) {
		return identity.ErrAlreadyExists
	}
	return err
}

func (es employerStore) Find(ctx context.Context, id string) (*identity.Employer, error) {
	e := &identity.Employer{}
	err := es.db.QueryRowContext(ctx, `
		select id, employer_code, employer_name, authorized, created_at
		from employers where id=$1
	`, id).Scan(&e.ID, &e.EmployerCode, &e.Name, &e.Authorized, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (es employerStore) FindByCode(ctx context.Context, code string) (*identity.Employer, error) {
	e := &identity.Employer{}
	err := es.db.QueryRowContext(ctx, `
		select id, employer_code, employer_name, authorized, created_at
		from employers where employer_code=$1
	`, code).Scan(&e.ID, &e.EmployerCode, &e.Name, &e.Authorized, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (es employerStore) List(ctx context.Context) ([]*identity.Employer, error) {
	rows, err := es.db.QueryContext(ctx, `
		select id, employer_code, employer_name, authorized, created_at
		from employers order by employer_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*identity.Employer
	for rows.Next() {
		e := &identity.Employer{}
		if err := rows.Scan(&e.ID, &e.EmployerCode, &e.Name, &e.Authorized, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (es employerStore) SetAuthorized(ctx context.Context, id string, authorized bool) error {
	res, err := es.db.ExecContext(ctx,
		`update employers set authorized=$2 where id=$1`, id, authorized)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return identity.ErrNotFound
	}
	return nil
}

type employeeStore struct{ db *sql.DB }

func (es employeeStore) Create(ctx context.Context, e *identity.Employee) error {
	err := es.db.QueryRowContext(ctx, `
		insert into employees(id, employee_code, password_hash, full_name, gender,
			date_of_birth, year_of_employment, employer_id)
		values ($1,$2,$3,$4,$5,$6,$7,$8) returning created_at
	`, e.ID, e.EmployeeCode, e.PasswordHash, e.FullName, e.Gender,
		e.DateOfBirth, e.YearOfEmployment, e.EmployerID).Scan(&e.CreatedAt)
	if isUniqueViolation(err) {
		return identity.ErrAlreadyExists
	}
	return err
}

func (es employeeStore) Find(ctx context.Context, id string) (*identity.Employee, error) {
	return es.find(ctx, `id=$1`, id)
}

func (es employeeStore) FindByCode(ctx context.Context, code string) (*identity.Employee, error) {
	return es.find(ctx, `employee_code=$1`, code)
}

func (es employeeStore) find(ctx context.Context, cond string, arg any) (*identity.Employee, error) {
	e := &identity.Employee{}
	err := es.db.QueryRowContext(ctx, `
		select id, employee_code, password_hash, full_name, gender,
			date_of_birth, year_of_employment, employer_id, created_at
		from employees where `+cond, arg).Scan(
		&e.ID, &e.EmployeeCode, &e.PasswordHash, &e.FullName, &e.Gender,
		&e.DateOfBirth, &e.YearOfEmployment, &e.EmployerID, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (es employeeStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := es.db.QueryRowContext(ctx, `select count(*) from employees`).Scan(&n)
	return n, err
}

type adminStore struct{ db *sql.DB }

func (as adminStore) Upsert(ctx context.Context, a *identity.Admin) error {
	return as.db.QueryRowContext(ctx, `
		insert into admins(id, username, password_hash)
		values ($1,$2,$3)
		on conflict (username) do update set password_hash = excluded.password_hash
		returning id, created_at
	`, a.ID, a.Username, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
}

func (as adminStore) FindByUsername(ctx context.Context, username string) (*identity.Admin, error) {
	a := &identity.Admin{}
	err := as.db.QueryRowContext(ctx, `
		select id, username, password_hash, created_at
		from admins where username=$1
	`, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
