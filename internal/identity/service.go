package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/auth"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/ids"
)

// Service provides registration, credential checks and employer
// administration on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RegisterEmployee creates an employee account. Registration is only
// permitted against an existing, authorized employer; the employee code must
// be unused.
func (s *Service) RegisterEmployee(ctx context.Context, reg Registration) (*Employee, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	employer, err := s.store.Employers(ctx).Find(ctx, reg.EmployerID)
	if err != nil {
		return nil, err
	}
	if !employer.Authorized {
		return nil, ErrEmployerNotAuthorized
	}

	code := strings.TrimSpace(reg.EmployeeCode)
	if existing, err := s.store.Employees(ctx).FindByCode(ctx, code); err == nil && existing != nil {
		return nil, ErrAlreadyExists
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	employee := &Employee{
		ID:               ids.New(),
		EmployeeCode:     code,
		PasswordHash:     hash,
		FullName:         strings.TrimSpace(reg.FullName),
		Gender:           strings.TrimSpace(reg.Gender),
		DateOfBirth:      reg.DateOfBirth,
		YearOfEmployment: reg.YearOfEmployment,
		EmployerID:       employer.ID,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.Employees(ctx).Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// AuthenticateEmployee verifies staff credentials. Any mismatch yields
// ErrInvalidCredentials without detail.
func (s *Service) AuthenticateEmployee(ctx context.Context, employeeCode, password string) (*Employee, error) {
	employeeCode = strings.TrimSpace(employeeCode)
	if employeeCode == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	employee, err := s.store.Employees(ctx).FindByCode(ctx, employeeCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.VerifyPassword(employee.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return employee, nil
}

// AuthenticateAdmin verifies administrator credentials.
func (s *Service) AuthenticateAdmin(ctx context.Context, username, password string) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	admin, err := s.store.Admins(ctx).FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// EnsureAdmin creates or updates an administrator account with the given
// credentials. Used by the seed command and tests.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &Admin{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Admins(ctx).Upsert(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// CreateEmployer adds a new employer with authorization off. A duplicate
// employer code is a conflict.
func (s *Service) CreateEmployer(ctx context.Context, employerCode, name string) (*Employer, error) {
	employerCode = strings.TrimSpace(employerCode)
	name = strings.TrimSpace(name)
	if employerCode == "" || name == "" {
		return nil, ErrInvalidInput
	}
	if existing, err := s.store.Employers(ctx).FindByCode(ctx, employerCode); err == nil && existing != nil {
		return nil, ErrAlreadyExists
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	employer := &Employer{
		ID:           ids.New(),
		EmployerCode: employerCode,
		Name:         name,
		Authorized:   false,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Employers(ctx).Create(ctx, employer); err != nil {
		return nil, err
	}
	return employer, nil
}

// ListEmployers returns all employers ordered by name.
func (s *Service) ListEmployers(ctx context.Context) ([]*Employer, error) {
	return s.store.Employers(ctx).List(ctx)
}

// ToggleAuthorization flips the employer's authorized flag and returns the
// updated record. Deauthorization only blocks future registrations; existing
// employees and their applications are untouched.
func (s *Service) ToggleAuthorization(ctx context.Context, id string) (*Employer, error) {
	employer, err := s.store.Employers(ctx).Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Employers(ctx).SetAuthorized(ctx, employer.ID, !employer.Authorized); err != nil {
		return nil, err
	}
	employer.Authorized = !employer.Authorized
	return employer, nil
}
