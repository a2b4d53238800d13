package appointment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abrigo/intake/internal/domain/housing"
	"github.com/abrigo/intake/internal/platform/backend"
	"github.com/abrigo/intake/pkg/cpf"
)

// RoomNamer supplies room display names. The housing service implements it.
type RoomNamer interface {
	RoomNames(ctx context.Context) map[int]string
}

// Sort selectors accepted by the directory, shaped as "field-order".
const (
	SortNameAsc  = "name-asc"
	SortNameDesc = "name-desc"
	SortDateAsc  = "date-asc"
	SortDateDesc = "date-desc"
)

// Service owns the appointment roster. It keeps an in-memory snapshot of
// the last fetched list so derived views (occupancy, reports) can reuse it
// without another round-trip; the directory always refetches.
type Service struct {
	repo        Repository
	rooms       RoomNamer
	storageBase string
	logger      zerolog.Logger

	mu       sync.RWMutex
	snapshot []*Appointment
}

func NewService(repo Repository, rooms RoomNamer, storageBase string, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		rooms:       rooms,
		storageBase: storageBase,
		logger:      logger.With().Str("component", "appointment").Logger(),
	}
}

// SetRoomNamer wires the housing service in after construction; the two
// services reference each other, so one side is attached late. Must be
// called before the server starts handling requests.
func (s *Service) SetRoomNamer(rooms RoomNamer) {
	s.rooms = rooms
}

func (s *Service) roomNames(ctx context.Context) map[int]string {
	if s.rooms == nil {
		return nil
	}
	return s.rooms.RoomNames(ctx)
}

// Load fetches the full roster from the backend, normalizes every record
// and replaces the snapshot.
func (s *Service) Load(ctx context.Context) ([]*Appointment, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := s.roomNames(ctx)
	for _, a := range list {
		a.Normalize(s.storageBase, names)
	}

	s.mu.Lock()
	s.snapshot = list
	s.mu.Unlock()
	return s.copySnapshot(), nil
}

// Snapshot returns the cached roster, fetching it only when the cache is
// empty.
func (s *Service) Snapshot(ctx context.Context) ([]*Appointment, error) {
	s.mu.RLock()
	cached := len(s.snapshot) > 0
	s.mu.RUnlock()
	if cached {
		return s.copySnapshot(), nil
	}
	return s.Load(ctx)
}

// Occupancies projects the roster into the shape the housing reconciler
// consumes.
func (s *Service) Occupancies(ctx context.Context) ([]housing.Occupancy, error) {
	list, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]housing.Occupancy, 0, len(list))
	for _, a := range list {
		out = append(out, housing.Occupancy{
			RoomID:       a.AdditionalInfo.RoomID,
			BedID:        a.AdditionalInfo.BedID,
			Hidden:       a.IsHidden,
			OccupantName: a.FullName(),
		})
	}
	return out, nil
}

// Directory returns the roster filtered and sorted for the list view. With
// an empty search term only visible records are returned; a non-empty term
// searches the whole roster, hidden records included, so staff can find a
// departed person to readmit.
func (s *Service) Directory(ctx context.Context, term, sortBy string) ([]*Appointment, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	filtered := make([]*Appointment, 0, len(list))
	for _, a := range list {
		if term == "" {
			if !a.IsHidden {
				filtered = append(filtered, a)
			}
			continue
		}
		if matchesName(a, term) {
			filtered = append(filtered, a)
		}
	}

	sortDirectory(filtered, sortBy)
	return filtered, nil
}

// matchesName reports whether the lowercased term is a substring of the
// first or the last name. The two fields match independently; a term
// spanning both does not.
func matchesName(a *Appointment, term string) bool {
	return strings.Contains(strings.ToLower(a.Name), term) ||
		strings.Contains(strings.ToLower(a.LastName), term)
}

// sortDirectory orders the list in place by a "field-order" selector.
// Unknown selectors leave the backend order untouched.
func sortDirectory(list []*Appointment, sortBy string) {
	var less func(a, b *Appointment) bool
	switch sortBy {
	case SortNameAsc:
		less = func(a, b *Appointment) bool {
			return strings.ToLower(a.FullName()) < strings.ToLower(b.FullName())
		}
	case SortNameDesc:
		less = func(a, b *Appointment) bool {
			return strings.ToLower(a.FullName()) > strings.ToLower(b.FullName())
		}
	case SortDateAsc:
		less = func(a, b *Appointment) bool { return a.Timestamp().Before(b.Timestamp()) }
	case SortDateDesc:
		less = func(a, b *Appointment) bool { return b.Timestamp().Before(a.Timestamp()) }
	default:
		return
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

// Get fetches one record and normalizes it for the editor.
func (s *Service) Get(ctx context.Context, id int) (*Appointment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Normalize(s.storageBase, s.roomNames(ctx))
	return a, nil
}

// Create registers a new intake. When replace is set, the backend overwrites
// an existing record with the same CPF instead of rejecting the duplicate.
func (s *Service) Create(ctx context.Context, a *Appointment, replace bool) (*Appointment, error) {
	if err := s.validate(a); err != nil {
		return nil, err
	}
	a.Replace = replace

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	created.Normalize(s.storageBase, s.roomNames(ctx))

	s.mu.Lock()
	if len(s.snapshot) > 0 {
		s.snapshot = append(s.snapshot, created)
	}
	s.mu.Unlock()

	s.logger.Info().Int("id", created.ID).Bool("replace", replace).Msg("appointment created")
	return created, nil
}

// Save persists editor changes. A saved record always returns to the active
// roster, so editing a hidden person readmits them.
func (s *Service) Save(ctx context.Context, id int, a *Appointment) (*Appointment, error) {
	if err := s.validate(a); err != nil {
		return nil, err
	}
	a.IsHidden = false

	updated, err := s.repo.Update(ctx, id, a)
	if err != nil {
		return nil, err
	}
	updated.Normalize(s.storageBase, s.roomNames(ctx))

	s.replaceInSnapshot(updated)
	s.logger.Info().Int("id", id).Msg("appointment updated")
	return updated, nil
}

// SetHidden toggles a record out of or back into the active roster and
// keeps the snapshot in step so derived availability reflects it at once.
func (s *Service) SetHidden(ctx context.Context, id int, hidden bool) error {
	if err := s.repo.SetHidden(ctx, id, hidden); err != nil {
		return err
	}

	// Snapshot records are handed out by pointer, so the entry is swapped
	// for a copy instead of mutated in place.
	s.mu.Lock()
	for i, a := range s.snapshot {
		if a.ID == id {
			updated := *a
			updated.IsHidden = hidden
			s.snapshot[i] = &updated
			break
		}
	}
	s.mu.Unlock()

	s.logger.Info().Int("id", id).Bool("hidden", hidden).Msg("appointment visibility changed")
	return nil
}

// UploadPhoto forwards an intake photo upstream and folds the refreshed
// record back into the snapshot.
func (s *Service) UploadPhoto(ctx context.Context, id int, fileName string, content []byte) (*Appointment, error) {
	if len(content) == 0 {
		return nil, backend.ValidationError("photo", "photo file is empty")
	}
	updated, err := s.repo.UploadPhoto(ctx, id, fileName, content)
	if err != nil {
		return nil, err
	}
	updated.Normalize(s.storageBase, s.roomNames(ctx))

	s.replaceInSnapshot(updated)
	s.logger.Info().Int("id", id).Str("file", fileName).Msg("appointment photo uploaded")
	return updated, nil
}

// AvailableBeds asks the backend for its own free-bed figure, used by the
// intake form header. Callers substitute the reconciler's derived count
// when the backend cannot answer.
func (s *Service) AvailableBeds(ctx context.Context) (int, error) {
	return s.repo.AvailableBeds(ctx)
}

func (s *Service) copySnapshot() []*Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Appointment, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

func (s *Service) replaceInSnapshot(updated *Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.snapshot {
		if a.ID == updated.ID {
			s.snapshot[i] = updated
			return
		}
	}
}

const adultAge = 18

// validate enforces the intake rules before anything is sent upstream.
// Failures come back in the same shape as backend 422s.
func (s *Service) validate(a *Appointment) error {
	if strings.TrimSpace(a.Name) == "" {
		return backend.ValidationError("name", "name is required")
	}
	if strings.TrimSpace(a.LastName) == "" {
		return backend.ValidationError("last_name", "last name is required")
	}
	if !cpf.Valid(a.CPF) {
		return backend.ValidationError("cpf", "invalid CPF")
	}
	if a.Gender == "" {
		return backend.ValidationError("gender", "gender is required")
	}
	if a.ArrivalDate == "" {
		return backend.ValidationError("arrival_date", "arrival date is required")
	}
	if a.Time == "" {
		return backend.ValidationError("time", "arrival time is required")
	}
	if a.BirthDate == "" {
		return backend.ValidationError("birth_date", "birth date is required")
	}
	if age := a.Age(time.Now()); age >= 0 && age < adultAge {
		return backend.ValidationError("birth_date", fmt.Sprintf("person must be at least %d years old", adultAge))
	}
	if a.Age(time.Now()) < 0 {
		return backend.ValidationError("birth_date", "invalid birth date")
	}
	if strings.TrimSpace(a.Phone) == "" && !a.NoPhone {
		return backend.ValidationError("phone", "phone is required unless marked as having none")
	}
	return nil
}
