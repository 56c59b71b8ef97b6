package models

// Category scopes pools (weight/age class). The engine only reads it.
type Category struct {
	ID             int    `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	IncludeInStats bool   `json:"include_in_stats" db:"include_in_stats"`
	BirthYearMin   *int   `json:"birth_year_min,omitempty" db:"birth_year_min"`
	BirthYearMax   *int   `json:"birth_year_max,omitempty" db:"birth_year_max"`
}

// PoolKey identifies a pool inside the whole tournament.
type PoolKey struct {
	CategoryID int `json:"category_id"`
	PoolNumber int `json:"pool_number"`
}

// PoolAssignment places a pool on a table. TableNumber 0 is the unassigned backlog.
type PoolAssignment struct {
	ID          int  `json:"id" db:"id"`
	CategoryID  int  `json:"category_id" db:"category_id"`
	PoolNumber  int  `json:"pool_number" db:"pool_number"`
	TableNumber int  `json:"table_number" db:"table_number"`
	Order       int  `json:"order" db:"sort_order"`
	Validated   bool `json:"validated" db:"validated"`
}

func (a *PoolAssignment) Key() PoolKey {
	return PoolKey{CategoryID: a.CategoryID, PoolNumber: a.PoolNumber}
}

// Configuration keys stored in the configuration table.
const (
	ConfigTableCount       = "table_count"
	ConfigActiveCategories = "active_categories"
)

type ConfigEntry struct {
	Key   string `json:"key" db:"key"`
	Value string `json:"value" db:"value"`
}
