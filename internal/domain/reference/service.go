package reference

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
)

// Service shapes raw reference data for the intake forms. Every lookup
// degrades to something renderable: reference APIs being down must never
// block an intake.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "reference").Logger(),
	}
}

// States lists Brazilian states for the address dropdown. On failure an
// empty list is returned and the form falls back to free-text entry.
func (s *Service) States(ctx context.Context) []*State {
	states, err := s.repo.States(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("states fetch failed")
		return []*State{}
	}
	return states
}

// CitiesByState lists a state's municipalities with a placeholder row
// prepended. An empty result yields a single "none found" row.
func (s *Service) CitiesByState(ctx context.Context, stateID int) []*City {
	cities, err := s.repo.CitiesByState(ctx, stateID)
	if err != nil {
		s.logger.Warn().Err(err).Int("state_id", stateID).Msg("cities fetch failed")
		cities = nil
	}
	if len(cities) == 0 {
		return []*City{{ID: sentinelID, Nome: noCitiesFoundLabel}}
	}
	return append([]*City{{ID: sentinelID, Nome: placeholderCity}}, cities...)
}

// Nationalities lists country names sorted alphabetically, with the English
// "Brazil" renamed to "Brasil" to match the rest of the form. Falls back to
// a short fixed list when the countries API fails.
func (s *Service) Nationalities(ctx context.Context) []string {
	names, err := s.repo.CountryNames(ctx)
	if err != nil || len(names) == 0 {
		if err != nil {
			s.logger.Warn().Err(err).Msg("countries fetch failed, using fallback list")
		}
		return fallbackNationalities()
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "Brazil" {
			n = "Brasil"
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
