package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/ids"
)

const unitColumns = `
	h.id, h.county, h.town_location, h.block_name, h.floor_number,
	h.house_type_id, ht.name, h.monthly_rent, h.payment_duration_months,
	h.occupancy_status, h.created_at
`

func scanUnit(row interface{ Scan(...any) error }) (housing.Unit, error) {
	var u housing.Unit
	err := row.Scan(
		&u.ID, &u.County, &u.TownLocation, &u.BlockName, &u.FloorNumber,
		&u.HouseTypeID, &u.HouseTypeName, &u.MonthlyRent, &u.PaymentDurationMonths,
		&u.OccupancyStatus, &u.CreatedAt,
	)
	return u, err
}

func (s *Store) CreateUnit(ctx context.Context, n housing.NewUnit) (housing.Unit, error) {
	if err := n.Validate(); err != nil {
		return housing.Unit{}, err
	}
	id := ids.New()
	_, err := s.db.ExecContext(ctx, `
		insert into housing_units(id, county, town_location, block_name, floor_number,
			house_type_id, monthly_rent, payment_duration_months, occupancy_status)
		values ($1,$2,$3,$4,$5,$6,$7,$8,'vacant')
	`, id, strings.TrimSpace(n.County), strings.TrimSpace(n.TownLocation),
		strings.TrimSpace(n.BlockName), n.FloorNumber, n.HouseTypeID,
		n.MonthlyRent, n.PaymentDurationMonths)
	if err != nil {
		if isForeignKeyViolation(err) {
			return housing.Unit{}, housing.ErrUnknownHouseType
		}
		return housing.Unit{}, err
	}
	return s.GetUnit(ctx, id)
}

func (s *Store) GetUnit(ctx context.Context, id string) (housing.Unit, error) {
	u, err := scanUnit(s.db.QueryRowContext(ctx, `
		select `+unitColumns+`
		from housing_units h join house_types ht on ht.id = h.house_type_id
		where h.id=$1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return housing.Unit{}, housing.ErrNotFound
	}
	if err != nil {
		return housing.Unit{}, err
	}
	return u, nil
}

func (s *Store) ListUnits(ctx context.Context, f housing.Filter) ([]housing.Unit, error) {
	query := `
		select ` + unitColumns + `
		from housing_units h join house_types ht on ht.id = h.house_type_id
	`
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(cond, "?", placeholder(len(args)), 1))
	}
	if f.TownLocation != "" {
		add("h.town_location = ?", f.TownLocation)
	}
	if f.BlockName != "" {
		add("h.block_name = ?", f.BlockName)
	}
	if f.FloorNumber != nil {
		add("h.floor_number = ?", *f.FloorNumber)
	}
	if f.HouseTypeID != "" {
		add("h.house_type_id = ?", f.HouseTypeID)
	}
	if f.MinRent != nil {
		add("h.monthly_rent >= ?", *f.MinRent)
	}
	if f.MaxRent != nil {
		add("h.monthly_rent <= ?", *f.MaxRent)
	}
	if len(conds) > 0 {
		query += " where " + strings.Join(conds, " and ")
	}
	query += " order by h.town_location, h.block_name, h.floor_number"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []housing.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (s *Store) UpdateUnit(ctx context.Context, id string, p housing.Patch) (housing.Unit, error) {
	if err := p.Validate(); err != nil {
		return housing.Unit{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return housing.Unit{}, err
	}
	defer func() { _ = tx.Rollback() }()

	u, err := scanUnit(tx.QueryRowContext(ctx, `
		select `+unitColumns+`
		from housing_units h join house_types ht on ht.id = h.house_type_id
		where h.id=$1 for update of h
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return housing.Unit{}, housing.ErrNotFound
	}
	if err != nil {
		return housing.Unit{}, err
	}
	p.Apply(&u)

	if _, err := tx.ExecContext(ctx, `
		update housing_units
		set county=$2, town_location=$3, block_name=$4, floor_number=$5,
			house_type_id=$6, monthly_rent=$7, payment_duration_months=$8
		where id=$1
	`, u.ID, u.County, u.TownLocation, u.BlockName, u.FloorNumber,
		u.HouseTypeID, u.MonthlyRent, u.PaymentDurationMonths); err != nil {
		if isForeignKeyViolation(err) {
			return housing.Unit{}, housing.ErrUnknownHouseType
		}
		return housing.Unit{}, err
	}
	if err := tx.Commit(); err != nil {
		return housing.Unit{}, err
	}
	return s.GetUnit(ctx, id)
}

func (s *Store) DeleteUnit(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status housing.OccupancyStatus
	if err := tx.QueryRowContext(ctx,
		`select occupancy_status from housing_units where id=$1 for update`, id).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return housing.ErrNotFound
		}
		return err
	}
	if status != housing.StatusVacant {
		return housing.ErrNotVacant
	}
	if _, err := tx.ExecContext(ctx, `delete from housing_units where id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) FilterOptions(ctx context.Context) (housing.FilterOptions, error) {
	var opts housing.FilterOptions

	collect := func(query string, scan func(rows *sql.Rows) error) error {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	}

	if err := collect(`select distinct town_location from housing_units order by 1`, func(rows *sql.Rows) error {
		var t string
		if err := rows.Scan(&t); err != nil {
			return err
		}
		opts.Towns = append(opts.Towns, t)
		return nil
	}); err != nil {
		return housing.FilterOptions{}, err
	}
	if err := collect(`select distinct block_name from housing_units order by 1`, func(rows *sql.Rows) error {
		var b string
		if err := rows.Scan(&b); err != nil {
			return err
		}
		opts.Blocks = append(opts.Blocks, b)
		return nil
	}); err != nil {
		return housing.FilterOptions{}, err
	}
	if err := collect(`select distinct floor_number from housing_units order by 1`, func(rows *sql.Rows) error {
		var f int
		if err := rows.Scan(&f); err != nil {
			return err
		}
		opts.Floors = append(opts.Floors, f)
		return nil
	}); err != nil {
		return housing.FilterOptions{}, err
	}
	if err := collect(`select id, name from house_types order by name`, func(rows *sql.Rows) error {
		var ht housing.HouseType
		if err := rows.Scan(&ht.ID, &ht.Name); err != nil {
			return err
		}
		opts.HouseTypes = append(opts.HouseTypes, ht)
		return nil
	}); err != nil {
		return housing.FilterOptions{}, err
	}
	return opts, nil
}
