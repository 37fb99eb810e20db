package identity

import "context"

// Store describes persistence operations required by the identity subsystem.
type Store interface {
	Employers(ctx context.Context) EmployerStore
	Employees(ctx context.Context) EmployeeStore
	Admins(ctx context.Context) AdminStore
}

// EmployerStore manages the employer registry.
type EmployerStore interface {
	Create(ctx context.Context, e *Employer) error
	Find(ctx context.Context, id string) (*Employer, error)
	FindByCode(ctx context.Context, code string) (*Employer, error)
	List(ctx context.Context) ([]*Employer, error)
	SetAuthorized(ctx context.Context, id string, authorized bool) error
}

// EmployeeStore manages registered employees.
type EmployeeStore interface {
	Create(ctx context.Context, e *Employee) error
	Find(ctx context.Context, id string) (*Employee, error)
	FindByCode(ctx context.Context, code string) (*Employee, error)
	Count(ctx context.Context) (int64, error)
}

// AdminStore manages the seeded administrator accounts.
type AdminStore interface {
	Upsert(ctx context.Context, a *Admin) error
	FindByUsername(ctx context.Context, username string) (*Admin, error)
}
