package housing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// OccupancySource exposes the current appointment roster to the reconciler.
// The appointment service implements it.
type OccupancySource interface {
	Occupancies(ctx context.Context) ([]Occupancy, error)
}

// Service derives bed availability by reconciling the room reference data
// with the live appointment roster. Rooms have a fixed capacity; occupancy
// is counted from visible appointments that hold a bed assignment.
type Service struct {
	repo     Repository
	roster   OccupancySource
	capacity int
	logger   zerolog.Logger
}

func NewService(repo Repository, roster OccupancySource, capacity int, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		roster:   roster,
		capacity: capacity,
		logger:   logger.With().Str("component", "housing").Logger(),
	}
}

// Rooms returns the room list, falling back to the default layout when the
// reference fetch fails so dropdowns still render.
func (s *Service) Rooms(ctx context.Context) []*Room {
	rooms, err := s.repo.Rooms(ctx)
	if err != nil || len(rooms) == 0 {
		if err != nil {
			s.logger.Warn().Err(err).Msg("room fetch failed, using fallback layout")
		}
		return fallbackRooms()
	}
	return rooms
}

// RoomNames maps room ids to display names for the appointment views.
func (s *Service) RoomNames(ctx context.Context) map[int]string {
	rooms := s.Rooms(ctx)
	names := make(map[int]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}
	return names
}

// Availability reconciles rooms against the roster. It never fails: when
// either fetch errors, it returns a zeroed summary flagged as degraded so
// the dashboard renders instead of breaking.
func (s *Service) Availability(ctx context.Context) *AvailabilitySummary {
	rooms, roomsErr := s.repo.Rooms(ctx)
	if roomsErr != nil || len(rooms) == 0 {
		if roomsErr != nil {
			s.logger.Warn().Err(roomsErr).Msg("room fetch failed, availability degraded")
		}
		return s.degradedSummary()
	}

	occupancies, err := s.roster.Occupancies(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("roster fetch failed, availability degraded")
		return s.degradedSummary()
	}

	occupied := make(map[int]int, len(rooms))
	for _, o := range occupancies {
		if !o.Occupies() {
			continue
		}
		occupied[*o.RoomID]++
	}

	summary := &AvailabilitySummary{Rooms: make([]RoomAvailability, 0, len(rooms))}
	for _, room := range rooms {
		occ := occupied[room.ID]
		avail := s.capacity - occ
		if avail < 0 {
			avail = 0
		}
		summary.Rooms = append(summary.Rooms, RoomAvailability{
			RoomID:    room.ID,
			Name:      room.Name,
			Capacity:  s.capacity,
			Occupied:  occ,
			Available: avail,
		})
		summary.TotalCapacity += s.capacity
		summary.TotalAvailable += avail
	}
	return summary
}

// AvailableBeds returns the shelter-wide free bed count.
func (s *Service) AvailableBeds(ctx context.Context) int {
	return s.Availability(ctx).TotalAvailable
}

// BedsByRoom returns a room's beds joined with the names of their current
// occupants, for the bed picker in the appointment editor.
func (s *Service) BedsByRoom(ctx context.Context, roomID int) ([]*Bed, error) {
	beds, err := s.repo.BedsByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list beds: %w", err)
	}

	occupancies, err := s.roster.Occupancies(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Int("room_id", roomID).Msg("roster fetch failed, beds shown without occupants")
		return beds, nil
	}

	byBed := make(map[int]Occupancy)
	for _, o := range occupancies {
		if o.Occupies() && *o.RoomID == roomID {
			byBed[*o.BedID] = o
		}
	}
	for _, b := range beds {
		if o, ok := byBed[b.ID]; ok {
			b.IsAvailable = false
			b.OccupantName = o.OccupantName
		}
	}
	return beds, nil
}

func (s *Service) degradedSummary() *AvailabilitySummary {
	rooms := fallbackRooms()
	summary := &AvailabilitySummary{
		Rooms:    make([]RoomAvailability, 0, len(rooms)),
		Degraded: true,
	}
	for _, room := range rooms {
		summary.Rooms = append(summary.Rooms, RoomAvailability{
			RoomID:   room.ID,
			Name:     room.Name,
			Capacity: s.capacity,
		})
		summary.TotalCapacity += s.capacity
	}
	return summary
}
