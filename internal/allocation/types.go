// Package allocation enforces the joint state machine between housing units
// and employee applications. Every transition touches both an application row
// and a housing row and must be atomic:
//
//	Apply:   no application for employee, unit vacant
//	         -> application{pending}, unit booked_pending
//	Approve: application pending -> approved, unit occupied
//	Reject:  application pending -> row deleted, unit vacant
//
// An approved application is terminal: the row is never deleted, and the
// at-most-one-application-per-employee constraint therefore blocks the
// employee from ever applying again. That is the observed behavior of the
// system and is preserved as-is; there is no vacate operation.
package allocation

import (
	"errors"
	"time"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known application states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Application binds one employee to one housing unit. At most one row may
// exist per employee at any time.
type Application struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	HousingID  string    `json:"housing_id"`
	Status     Status    `json:"application_status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Detail is an application joined with display data for listings.
type Detail struct {
	Application
	EmployeeCode          string `json:"employee_code"`
	FullName              string `json:"full_name"`
	Gender                string `json:"gender"`
	EmployerName          string `json:"employer_name"`
	County                string `json:"county"`
	TownLocation          string `json:"town_location"`
	BlockName             string `json:"block_name"`
	FloorNumber           int    `json:"floor_number"`
	MonthlyRent           int64  `json:"monthly_rent"`
	PaymentDurationMonths int    `json:"payment_duration_months"`
	HouseTypeName         string `json:"house_type_name"`
}

// Query narrows application listings. An empty EmployeeID means all
// applications (admin view).
type Query struct {
	EmployeeID string
}

var (
	ErrNotFound         = errors.New("application or housing unit not found")
	ErrAlreadyApplied   = errors.New("employee already has an application")
	ErrUnitNotVacant    = errors.New("housing unit is not vacant")
	ErrAlreadyProcessed = errors.New("application has already been processed")
)
