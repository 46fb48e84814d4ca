package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keoshop/storefront/internal/domain/location"
)

const (
	listProvincesSQL = `SELECT code, name FROM provinces ORDER BY name`
	listDistrictsSQL = `SELECT code, name, province_code FROM districts WHERE province_code = $1 ORDER BY name`
	listWardsSQL     = `SELECT code, name, district_code FROM wards WHERE district_code = $1 ORDER BY name`
)

var _ location.Repository = (*LocationRepository)(nil)

// LocationRepository implements location.Repository backed by PostgreSQL.
type LocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository returns a LocationRepository that uses the given pool.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

func (r *LocationRepository) Provinces(ctx context.Context) ([]location.Province, error) {
	rows, err := r.pool.Query(ctx, listProvincesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing provinces: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (location.Province, error) {
		var p location.Province
		err := row.Scan(&p.Code, &p.Name)
		return p, err
	})
}

func (r *LocationRepository) Districts(ctx context.Context, provinceCode string) ([]location.District, error) {
	rows, err := r.pool.Query(ctx, listDistrictsSQL, provinceCode)
	if err != nil {
		return nil, fmt.Errorf("listing districts for %q: %w", provinceCode, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (location.District, error) {
		var d location.District
		err := row.Scan(&d.Code, &d.Name, &d.ProvinceCode)
		return d, err
	})
}

func (r *LocationRepository) Wards(ctx context.Context, districtCode string) ([]location.Ward, error) {
	rows, err := r.pool.Query(ctx, listWardsSQL, districtCode)
	if err != nil {
		return nil, fmt.Errorf("listing wards for %q: %w", districtCode, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (location.Ward, error) {
		var w location.Ward
		err := row.Scan(&w.Code, &w.Name, &w.DistrictCode)
		return w, err
	})
}
