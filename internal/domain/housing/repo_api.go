package housing

import (
	"context"
	"fmt"

	"github.com/abrigo/intake/internal/platform/backend"
)

// apiRepository reads room reference data from the accommodation backend.
type apiRepository struct {
	client *backend.Client
}

func NewAPIRepository(client *backend.Client) Repository {
	return &apiRepository{client: client}
}

type apiBed struct {
	ID          int  `json:"id"`
	RoomID      int  `json:"room_id"`
	BedNumber   int  `json:"bed_number"`
	IsAvailable bool `json:"is_available"`
}

func (r *apiRepository) Rooms(ctx context.Context) ([]*Room, error) {
	var rooms []*Room
	if err := r.client.Get(ctx, "/api/rooms", &rooms); err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	return rooms, nil
}

func (r *apiRepository) BedsByRoom(ctx context.Context, roomID int) ([]*Bed, error) {
	var raw []apiBed
	if err := r.client.Get(ctx, fmt.Sprintf("/api/rooms/%d/beds", roomID), &raw); err != nil {
		return nil, fmt.Errorf("fetch beds for room %d: %w", roomID, err)
	}
	beds := make([]*Bed, 0, len(raw))
	for _, b := range raw {
		beds = append(beds, &Bed{
			ID:          b.ID,
			RoomID:      b.RoomID,
			Number:      b.BedNumber,
			IsAvailable: b.IsAvailable,
		})
	}
	return beds, nil
}
