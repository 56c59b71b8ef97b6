package models

import "time"

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Competitor is a registered judoka. Victories, Score and HasBouts are not stored:
// they are derived from the bouts of the current snapshot.
type Competitor struct {
	ID             int       `json:"id" db:"id"`
	CategoryID     int       `json:"category_id" db:"category_id"`
	FirstName      string    `json:"firstname" db:"first_name"`
	LastName       string    `json:"lastname" db:"last_name"`
	Sex            Sex       `json:"sex" db:"sex"`
	BirthYear      int       `json:"birth_year" db:"birth_year"`
	Club           string    `json:"club" db:"club"`
	Weight         float64   `json:"weight" db:"weight"`
	PoolNumber     *int      `json:"pool_number,omitempty" db:"pool_number"`
	OutsideBracket bool      `json:"hors_categorie" db:"outside_bracket"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Victories int  `json:"victories" db:"-"`
	Score     int  `json:"score" db:"-"`
	HasBouts  bool `json:"has_fights" db:"-"`
}

// Pool returns the pool number, 0 when the competitor is unassigned.
func (c *Competitor) Pool() int {
	if c.PoolNumber == nil {
		return 0
	}
	return *c.PoolNumber
}

func (c *Competitor) FullName() string {
	return c.FirstName + " " + c.LastName
}

// PoolUpdate is one row of a batched pool-number write.
type PoolUpdate struct {
	CompetitorID int `json:"id"`
	PoolNumber   int `json:"pool_number"`
}
