package domain

import "time"

type Order struct {
	ID          uint
	TableNumber int
	MenuItem    string
	Quantity    int
	CreatedAt   time.Time
	FinishedAt  time.Time
}

// Cooking time is drawn once per order, in whole minutes, from this inclusive range.
const (
	MinCookTime = 5 * time.Minute
	MaxCookTime = 15 * time.Minute
)

func (o Order) IsRemaining(now time.Time) bool {
	return o.FinishedAt.After(now)
}

// TimeToCook returns the whole minutes left until the order is finished, never negative.
func (o Order) TimeToCook(now time.Time) int64 {
	minutes := int64(o.FinishedAt.Sub(now) / time.Minute)
	if minutes < 0 {
		return 0
	}
	return minutes
}
