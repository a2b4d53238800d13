package reference

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

type mockRepo struct {
	states    []*State
	statesErr error
	cities    map[int][]*City
	citiesErr error
	countries []string
	countErr  error
}

func (m *mockRepo) States(ctx context.Context) ([]*State, error) {
	return m.states, m.statesErr
}

func (m *mockRepo) CitiesByState(ctx context.Context, stateID int) ([]*City, error) {
	if m.citiesErr != nil {
		return nil, m.citiesErr
	}
	return m.cities[stateID], nil
}

func (m *mockRepo) CountryNames(ctx context.Context) ([]string, error) {
	return m.countries, m.countErr
}

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, zerolog.Nop())
}

func TestStates_EmptyOnError(t *testing.T) {
	svc := newTestService(&mockRepo{statesErr: fmt.Errorf("ibge down")})
	if states := svc.States(context.Background()); len(states) != 0 {
		t.Errorf("expected empty list, got %+v", states)
	}
}

func TestCitiesByState_PrependsPlaceholder(t *testing.T) {
	repo := &mockRepo{cities: map[int][]*City{
		35: {{ID: 3550308, Nome: "São Paulo"}, {ID: 3509502, Nome: "Campinas"}},
	}}
	cities := newTestService(repo).CitiesByState(context.Background(), 35)

	if len(cities) != 3 {
		t.Fatalf("expected placeholder + 2 cities, got %d", len(cities))
	}
	if cities[0].ID != -1 || cities[0].Nome != "Selecione uma cidade" {
		t.Errorf("expected placeholder row first, got %+v", cities[0])
	}
	if cities[1].Nome != "São Paulo" {
		t.Errorf("expected original order preserved, got %+v", cities[1])
	}
}

func TestCitiesByState_NoneFound(t *testing.T) {
	cities := newTestService(&mockRepo{}).CitiesByState(context.Background(), 99)
	if len(cities) != 1 || cities[0].Nome != "Nenhuma cidade encontrada" {
		t.Errorf("expected single none-found row, got %+v", cities)
	}
}

func TestCitiesByState_NoneFoundOnError(t *testing.T) {
	svc := newTestService(&mockRepo{citiesErr: fmt.Errorf("ibge down")})
	cities := svc.CitiesByState(context.Background(), 35)
	if len(cities) != 1 || cities[0].ID != -1 {
		t.Errorf("expected sentinel row on error, got %+v", cities)
	}
}

func TestNationalities_SortedWithBrazilRenamed(t *testing.T) {
	repo := &mockRepo{countries: []string{"Uruguay", "Brazil", "Argentina"}}
	names := newTestService(repo).Nationalities(context.Background())

	want := []string{"Argentina", "Brasil", "Uruguay"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestNationalities_FallbackOnError(t *testing.T) {
	svc := newTestService(&mockRepo{countErr: fmt.Errorf("api down")})
	names := svc.Nationalities(context.Background())
	if len(names) != 5 || names[0] != "Brasil" {
		t.Errorf("expected fallback list, got %+v", names)
	}
}
