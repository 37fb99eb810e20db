package memory

import (
	"context"
	"sort"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
)

func (s *Store) Employers(ctx context.Context) identity.EmployerStore { return employerStore{s} }
func (s *Store) Employees(ctx context.Context) identity.EmployeeStore { return employeeStore{s} }
func (s *Store) Admins(ctx context.Context) identity.AdminStore       { return adminStore{s} }

type employerStore struct{ s *Store }

func (es employerStore) Create(ctx context.Context, e *identity.Employer) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	if _, ok := es.s.employerByCode[e.EmployerCode]; ok {
		return identity.ErrAlreadyExists
	}
	cp := *e
	es.s.employers[cp.ID] = &cp
	es.s.employerByCode[cp.EmployerCode] = cp.ID
	return nil
}

func (es employerStore) Find(ctx context.Context, id string) (*identity.Employer, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()
	e, ok := es.s.employers[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (es employerStore) FindByCode(ctx context.Context, code string) (*identity.Employer, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()
	id, ok := es.s.employerByCode[code]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *es.s.employers[id]
	return &cp, nil
}

func (es employerStore) List(ctx context.Context) ([]*identity.Employer, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()
	res := make([]*identity.Employer, 0, len(es.s.employers))
	for _, e := range es.s.employers {
		cp := *e
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (es employerStore) SetAuthorized(ctx context.Context, id string, authorized bool) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	e, ok := es.s.employers[id]
	if !ok {
		return identity.ErrNotFound
	}
	e.Authorized = authorized
	return nil
}

type employeeStore struct{ s *Store }

func (es employeeStore) Create(ctx context.Context, e *identity.Employee) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	if _, ok := es.s.employeeByCode[e.EmployeeCode]; ok {
		return identity.ErrAlreadyExists
	}
	cp := *e
	es.s.employees[cp.ID] = &cp
	es.s.employeeByCode[cp.EmployeeCode] = cp.ID
	return nil
}

func (es employeeStore) Find(ctx context.Context, id string) (*identity.Employee, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()
	e, ok := es.s.employees[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (es employeeStore) FindByCode(ctx context.Context, code string) (*identity.Employee, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()
	id, ok := es.s.employeeByCode[code]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *es.s.employees[id]
	return &cp, nil
}

func (es employeeStore) Count(ctx context.Context) (int64, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()
	return int64(len(es.s.employees)), nil
}

type adminStore struct{ s *Store }

func (as adminStore) Upsert(ctx context.Context, a *identity.Admin) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	cp := *a
	if prev, ok := as.s.admins[cp.Username]; ok {
		cp.ID = prev.ID
		cp.CreatedAt = prev.CreatedAt
	}
	as.s.admins[cp.Username] = &cp
	return nil
}

func (as adminStore) FindByUsername(ctx context.Context, username string) (*identity.Admin, error) {
	as.s.mu.RLock()
	defer as.s.mu.RUnlock()
	a, ok := as.s.admins[username]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
