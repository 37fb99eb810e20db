package housing

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OccupancyStatus is the lifecycle state of a housing unit. A unit cycles
// vacant -> booked_pending -> (occupied | vacant); occupied only reverts
// outside the normal flow.
type OccupancyStatus string

const (
	StatusVacant        OccupancyStatus = "vacant"
	StatusBookedPending OccupancyStatus = "booked_pending"
	StatusOccupied      OccupancyStatus = "occupied"
)

// Valid reports whether s is one of the known occupancy states.
func (s OccupancyStatus) Valid() bool {
	switch s {
	case StatusVacant, StatusBookedPending, StatusOccupied:
		return true
	}
	return false
}

// HouseType is reference data, a small fixed vocabulary of unit layouts.
type HouseType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Unit is a housing unit in the inventory. MonthlyRent is in minor units
// (cents). No floats.
type Unit struct {
	ID                    string          `json:"id"`
	County                string          `json:"county"`
	TownLocation          string          `json:"town_location"`
	BlockName             string          `json:"block_name"`
	FloorNumber           int             `json:"floor_number"`
	HouseTypeID           string          `json:"house_type_id"`
	HouseTypeName         string          `json:"house_type_name,omitempty"`
	MonthlyRent           int64           `json:"monthly_rent"`
	PaymentDurationMonths int             `json:"payment_duration_months"`
	OccupancyStatus       OccupancyStatus `json:"occupancy_status"`
	CreatedAt             time.Time       `json:"created_at"`
}

// NewUnit carries the fields required to create a unit. New units always
// start vacant.
type NewUnit struct {
	County                string `json:"county"`
	TownLocation          string `json:"town_location"`
	BlockName             string `json:"block_name"`
	FloorNumber           int    `json:"floor_number"`
	HouseTypeID           string `json:"house_type_id"`
	MonthlyRent           int64  `json:"monthly_rent"`
	PaymentDurationMonths int    `json:"payment_duration_months"`
}

// Validate checks required fields. Returned errors wrap ErrInvalidInput.
func (n NewUnit) Validate() error {
	switch {
	case strings.TrimSpace(n.County) == "":
		return fmt.Errorf("%w: county is required", ErrInvalidInput)
	case strings.TrimSpace(n.TownLocation) == "":
		return fmt.Errorf("%w: town_location is required", ErrInvalidInput)
	case strings.TrimSpace(n.BlockName) == "":
		return fmt.Errorf("%w: block_name is required", ErrInvalidInput)
	case n.FloorNumber < 0:
		return fmt.Errorf("%w: floor_number must be >= 0", ErrInvalidInput)
	case strings.TrimSpace(n.HouseTypeID) == "":
		return fmt.Errorf("%w: house_type_id is required", ErrInvalidInput)
	case n.MonthlyRent < 0:
		return fmt.Errorf("%w: monthly_rent must be >= 0", ErrInvalidInput)
	case n.PaymentDurationMonths <= 0:
		return fmt.Errorf("%w: payment_duration_months must be > 0", ErrInvalidInput)
	}
	return nil
}

// Patch is a partial update. Only non-nil fields overwrite the stored record;
// occupancy status is never patchable, it belongs to the allocation workflow.
type Patch struct {
	County                *string `json:"county"`
	TownLocation          *string `json:"town_location"`
	BlockName             *string `json:"block_name"`
	FloorNumber           *int    `json:"floor_number"`
	HouseTypeID           *string `json:"house_type_id"`
	MonthlyRent           *int64  `json:"monthly_rent"`
	PaymentDurationMonths *int    `json:"payment_duration_months"`
}

// Apply merges the patch into u field by field.
func (p Patch) Apply(u *Unit) {
	if p.County != nil {
		u.County = *p.County
	}
	if p.TownLocation != nil {
		u.TownLocation = *p.TownLocation
	}
	if p.BlockName != nil {
		u.BlockName = *p.BlockName
	}
	if p.FloorNumber != nil {
		u.FloorNumber = *p.FloorNumber
	}
	if p.HouseTypeID != nil {
		u.HouseTypeID = *p.HouseTypeID
	}
	if p.MonthlyRent != nil {
		u.MonthlyRent = *p.MonthlyRent
	}
	if p.PaymentDurationMonths != nil {
		u.PaymentDurationMonths = *p.PaymentDurationMonths
	}
}

// Validate checks the supplied fields only.
func (p Patch) Validate() error {
	if p.County != nil && strings.TrimSpace(*p.County) == "" {
		return fmt.Errorf("%w: county must not be empty", ErrInvalidInput)
	}
	if p.TownLocation != nil && strings.TrimSpace(*p.TownLocation) == "" {
		return fmt.Errorf("%w: town_location must not be empty", ErrInvalidInput)
	}
	if p.BlockName != nil && strings.TrimSpace(*p.BlockName) == "" {
		return fmt.Errorf("%w: block_name must not be empty", ErrInvalidInput)
	}
	if p.FloorNumber != nil && *p.FloorNumber < 0 {
		return fmt.Errorf("%w: floor_number must be >= 0", ErrInvalidInput)
	}
	if p.HouseTypeID != nil && strings.TrimSpace(*p.HouseTypeID) == "" {
		return fmt.Errorf("%w: house_type_id must not be empty", ErrInvalidInput)
	}
	if p.MonthlyRent != nil && *p.MonthlyRent < 0 {
		return fmt.Errorf("%w: monthly_rent must be >= 0", ErrInvalidInput)
	}
	if p.PaymentDurationMonths != nil && *p.PaymentDurationMonths <= 0 {
		return fmt.Errorf("%w: payment_duration_months must be > 0", ErrInvalidInput)
	}
	return nil
}

// Filter narrows unit listings. All supplied fields are ANDed together; rent
// bounds are inclusive.
type Filter struct {
	TownLocation string
	BlockName    string
	FloorNumber  *int
	HouseTypeID  string
	MinRent      *int64
	MaxRent      *int64
}

// Matches reports whether u satisfies the filter.
func (f Filter) Matches(u Unit) bool {
	if f.TownLocation != "" && u.TownLocation != f.TownLocation {
		return false
	}
	if f.BlockName != "" && u.BlockName != f.BlockName {
		return false
	}
	if f.FloorNumber != nil && u.FloorNumber != *f.FloorNumber {
		return false
	}
	if f.HouseTypeID != "" && u.HouseTypeID != f.HouseTypeID {
		return false
	}
	if f.MinRent != nil && u.MonthlyRent < *f.MinRent {
		return false
	}
	if f.MaxRent != nil && u.MonthlyRent > *f.MaxRent {
		return false
	}
	return true
}

// FilterOptions is the distinct set of values used to populate filter
// selectors on the client.
type FilterOptions struct {
	Towns      []string    `json:"towns"`
	Blocks     []string    `json:"blocks"`
	Floors     []int       `json:"floors"`
	HouseTypes []HouseType `json:"house_types"`
}

var (
	ErrNotFound         = errors.New("housing unit not found")
	ErrNotVacant        = errors.New("housing unit is not vacant")
	ErrUnknownHouseType = errors.New("unknown house type")
	ErrInvalidInput     = errors.New("invalid input")
)
