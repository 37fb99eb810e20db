package allocation

import "context"

// Service defines the allocation workflow operations. Implementations must
// make each transition atomic and be re-entrant across concurrent calls: the
// store is the only serialization point. Two racing Apply calls on the same
// vacant unit resolve to exactly one winner; the loser gets ErrUnitNotVacant
// or ErrAlreadyApplied, never a partial write.
type Service interface {
	// Apply creates a pending application for the employee and flips the
	// unit to booked_pending.
	Apply(ctx context.Context, employeeID, unitID string) (Application, error)
	// Approve marks a pending application approved and the unit occupied.
	Approve(ctx context.Context, applicationID string) (Application, error)
	// Reject deletes a pending application and returns the unit to vacant,
	// freeing the employee to apply again.
	Reject(ctx context.Context, applicationID string) (Application, error)
	// Applications lists applications joined with display data, newest first.
	Applications(ctx context.Context, q Query) ([]Detail, error)
}
