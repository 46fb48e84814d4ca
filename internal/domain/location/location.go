// Package location holds the read-only address lookup tables used by the
// checkout form: province, district and ward, keyed by official codes.
package location

import "context"

// Province is a top-level administrative division.
type Province struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// District belongs to a province.
type District struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	ProvinceCode string `json:"province_code"`
}

// Ward belongs to a district.
type Ward struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	DistrictCode string `json:"district_code"`
}

// Repository provides location lookups.
type Repository interface {
	Provinces(ctx context.Context) ([]Province, error)
	Districts(ctx context.Context, provinceCode string) ([]District, error)
	Wards(ctx context.Context, districtCode string) ([]Ward, error)
}
