package housing

import "context"

// Inventory defines housing unit administration and browsing operations.
// Deleting a unit is gated on vacancy to avoid racing an in-flight
// application; all other occupancy mutations belong to the allocation
// workflow.
type Inventory interface {
	CreateUnit(ctx context.Context, n NewUnit) (Unit, error)
	GetUnit(ctx context.Context, id string) (Unit, error)
	ListUnits(ctx context.Context, f Filter) ([]Unit, error)
	UpdateUnit(ctx context.Context, id string, p Patch) (Unit, error)
	DeleteUnit(ctx context.Context, id string) error
	FilterOptions(ctx context.Context) (FilterOptions, error)
}
