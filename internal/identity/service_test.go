package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/store/memory"
)

func newService(t *testing.T) (*identity.Service, *identity.Employer) {
	t.Helper()
	svc := identity.NewService(memory.New())
	employer, err := svc.CreateEmployer(context.Background(), "KPS-001", "Kenya Prisons Service")
	if err != nil {
		t.Fatalf("create employer: %v", err)
	}
	if _, err := svc.ToggleAuthorization(context.Background(), employer.ID); err != nil {
		t.Fatalf("authorize employer: %v", err)
	}
	employer.Authorized = true
	return svc, employer
}

func registration(employerID string) identity.Registration {
	return identity.Registration{
		EmployeeCode:     "EMP-1",
		Password:         "secret123",
		FullName:         "Jane Doe",
		Gender:           "female",
		DateOfBirth:      time.Date(1992, 4, 15, 0, 0, 0, 0, time.UTC),
		YearOfEmployment: 2016,
		EmployerID:       employerID,
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, employer := newService(t)

	employee, err := svc.RegisterEmployee(context.Background(), registration(employer.ID))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if employee.PasswordHash == "secret123" || employee.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}

	got, err := svc.AuthenticateEmployee(context.Background(), "EMP-1", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != employee.ID {
		t.Fatalf("authenticated id = %s, want %s", got.ID, employee.ID)
	}

	if _, err := svc.AuthenticateEmployee(context.Background(), "EMP-1", "wrong"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := svc.AuthenticateEmployee(context.Background(), "NOPE", "secret123"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("unknown code err = %v", err)
	}
}

func TestRegisterDuplicateCode(t *testing.T) {
	svc, employer := newService(t)

	if _, err := svc.RegisterEmployee(context.Background(), registration(employer.ID)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.RegisterEmployee(context.Background(), registration(employer.ID)); !errors.Is(err, identity.ErrAlreadyExists) {
		t.Fatalf("duplicate err = %v, want ErrAlreadyExists", err)
	}
}

func TestRegisterUnauthorizedEmployer(t *testing.T) {
	svc, _ := newService(t)

	other, err := svc.CreateEmployer(context.Background(), "NPS-002", "National Police Service")
	if err != nil {
		t.Fatalf("create employer: %v", err)
	}
	if _, err := svc.RegisterEmployee(context.Background(), registration(other.ID)); !errors.Is(err, identity.ErrEmployerNotAuthorized) {
		t.Fatalf("err = %v, want ErrEmployerNotAuthorized", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, employer := newService(t)

	reg := registration(employer.ID)
	reg.FullName = "  "
	if _, err := svc.RegisterEmployee(context.Background(), reg); !errors.Is(err, identity.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestToggleAuthorizationFlips(t *testing.T) {
	svc, employer := newService(t)

	toggled, err := svc.ToggleAuthorization(context.Background(), employer.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Authorized {
		t.Fatal("toggle should have turned authorization off")
	}

	toggled, err = svc.ToggleAuthorization(context.Background(), employer.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if !toggled.Authorized {
		t.Fatal("toggle should have turned authorization on")
	}

	if _, err := svc.ToggleAuthorization(context.Background(), "missing"); !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("missing employer err = %v", err)
	}
}

func TestDeauthorizationKeepsExistingEmployees(t *testing.T) {
	svc, employer := newService(t)

	employee, err := svc.RegisterEmployee(context.Background(), registration(employer.ID))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.ToggleAuthorization(context.Background(), employer.ID); err != nil {
		t.Fatalf("deauthorize: %v", err)
	}

	// Existing employees keep logging in; new registrations are blocked.
	if _, err := svc.AuthenticateEmployee(context.Background(), employee.EmployeeCode, "secret123"); err != nil {
		t.Fatalf("existing employee login: %v", err)
	}
	reg := registration(employer.ID)
	reg.EmployeeCode = "EMP-2"
	if _, err := svc.RegisterEmployee(context.Background(), reg); !errors.Is(err, identity.ErrEmployerNotAuthorized) {
		t.Fatalf("new registration err = %v", err)
	}
}

func TestEnsureAdminUpsertsCredentials(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.EnsureAdmin(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if _, err := svc.AuthenticateAdmin(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("admin login: %v", err)
	}

	// Re-seeding rotates the password.
	if _, err := svc.EnsureAdmin(context.Background(), "admin", "rotated"); err != nil {
		t.Fatalf("re-seed admin: %v", err)
	}
	if _, err := svc.AuthenticateAdmin(context.Background(), "admin", "admin123"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("old password err = %v", err)
	}
	if _, err := svc.AuthenticateAdmin(context.Background(), "admin", "rotated"); err != nil {
		t.Fatalf("new password login: %v", err)
	}
}

func TestCreateEmployerDuplicate(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.CreateEmployer(context.Background(), "KPS-001", "Duplicate"); !errors.Is(err, identity.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}
