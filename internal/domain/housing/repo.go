package housing

import "context"

// Repository fetches room reference data from the backend.
type Repository interface {
	Rooms(ctx context.Context) ([]*Room, error)
	BedsByRoom(ctx context.Context, roomID int) ([]*Bed, error)
}
