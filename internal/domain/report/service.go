package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/abrigo/intake/internal/domain/appointment"
	"github.com/abrigo/intake/internal/domain/housing"
)

// Summary is a point-in-time operational snapshot of the shelter.
type Summary struct {
	GeneratedAt         time.Time                    `json:"generated_at"`
	TotalAppointments   int                          `json:"total_appointments"`
	Visible             int                          `json:"visible"`
	Hidden              int                          `json:"hidden"`
	ByGender            map[string]int               `json:"by_gender"`
	ByAccommodationMode map[string]int               `json:"by_accommodation_mode"`
	Availability        *housing.AvailabilitySummary `json:"availability"`
}

// AppointmentSource feeds the roster into the report.
type AppointmentSource interface {
	Snapshot(ctx context.Context) ([]*appointment.Appointment, error)
}

// AvailabilitySource feeds the derived bed availability into the report.
type AvailabilitySource interface {
	Availability(ctx context.Context) *housing.AvailabilitySummary
}

// Service derives operational summaries from data the other services
// already hold; it makes no backend calls of its own.
type Service struct {
	roster AppointmentSource
	beds   AvailabilitySource
	logger zerolog.Logger
}

func NewService(roster AppointmentSource, beds AvailabilitySource, logger zerolog.Logger) *Service {
	return &Service{
		roster: roster,
		beds:   beds,
		logger: logger.With().Str("component", "report").Logger(),
	}
}

// Summary builds the current operational snapshot.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	list, err := s.roster.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		GeneratedAt:         time.Now(),
		TotalAppointments:   len(list),
		ByGender:            make(map[string]int),
		ByAccommodationMode: make(map[string]int),
	}
	for _, a := range list {
		if a.IsHidden {
			out.Hidden++
			continue
		}
		out.Visible++
		if a.Gender != "" {
			out.ByGender[a.Gender]++
		}
		if a.AccommodationMode != "" {
			out.ByAccommodationMode[a.AccommodationMode]++
		}
	}

	out.Availability = s.beds.Availability(ctx)
	return out, nil
}
