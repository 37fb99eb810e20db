package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Employer is an organization whose staff may register for housing once the
// employer is authorized. Employers are never hard-deleted.
type Employer struct {
	ID           string    `json:"id"`
	EmployerCode string    `json:"employer_code"`
	Name         string    `json:"employer_name"`
	Authorized   bool      `json:"authorized"`
	CreatedAt    time.Time `json:"created_at"`
}

// Employee is a registered staff member of an authorized employer.
type Employee struct {
	ID               string    `json:"id"`
	EmployeeCode     string    `json:"employee_code"`
	PasswordHash     string    `json:"-"`
	FullName         string    `json:"full_name"`
	Gender           string    `json:"gender"`
	DateOfBirth      time.Time `json:"date_of_birth"`
	YearOfEmployment int       `json:"year_of_employment"`
	EmployerID       string    `json:"employer_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// Admin accounts are seeded out-of-band, never self-registered.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration carries the fields required to register an employee.
type Registration struct {
	EmployeeCode     string
	Password         string
	FullName         string
	Gender           string
	DateOfBirth      time.Time
	YearOfEmployment int
	EmployerID       string
}

// Validate checks required fields. Returned errors wrap ErrInvalidInput.
func (r Registration) Validate() error {
	switch {
	case strings.TrimSpace(r.EmployeeCode) == "":
		return fmt.Errorf("%w: employee_id is required", ErrInvalidInput)
	case r.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	case strings.TrimSpace(r.FullName) == "":
		return fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	case strings.TrimSpace(r.Gender) == "":
		return fmt.Errorf("%w: gender is required", ErrInvalidInput)
	case r.DateOfBirth.IsZero():
		return fmt.Errorf("%w: date_of_birth is required", ErrInvalidInput)
	case r.YearOfEmployment <= 0:
		return fmt.Errorf("%w: year_of_employment is required", ErrInvalidInput)
	case strings.TrimSpace(r.EmployerID) == "":
		return fmt.Errorf("%w: employer_id is required", ErrInvalidInput)
	}
	return nil
}

var (
	ErrNotFound              = errors.New("identity: not found")
	ErrAlreadyExists         = errors.New("identity: already exists")
	ErrInvalidInput          = errors.New("identity: invalid input")
	ErrInvalidCredentials    = errors.New("identity: invalid credentials")
	ErrEmployerNotAuthorized = errors.New("identity: employer not authorized")
)
