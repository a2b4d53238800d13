package reference

import "context"

// Repository fetches geographic reference data from the public localities
// and countries APIs.
type Repository interface {
	States(ctx context.Context) ([]*State, error)
	CitiesByState(ctx context.Context, stateID int) ([]*City, error)
	CountryNames(ctx context.Context) ([]string, error)
}
