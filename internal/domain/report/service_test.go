package report

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/abrigo/intake/internal/domain/appointment"
	"github.com/abrigo/intake/internal/domain/housing"
	"github.com/abrigo/intake/internal/platform/backend"
)

type fakeRoster struct {
	list []*appointment.Appointment
	err  error
}

func (f *fakeRoster) Snapshot(ctx context.Context) ([]*appointment.Appointment, error) {
	return f.list, f.err
}

type fakeBeds struct {
	summary *housing.AvailabilitySummary
}

func (f *fakeBeds) Availability(ctx context.Context) *housing.AvailabilitySummary {
	return f.summary
}

func TestSummary_Breakdowns(t *testing.T) {
	roster := &fakeRoster{list: []*appointment.Appointment{
		{ID: 1, Gender: "feminino", AccommodationMode: "pernoite"},
		{ID: 2, Gender: "masculino", AccommodationMode: "pernoite"},
		{ID: 3, Gender: "feminino", AccommodationMode: "24 horas"},
		{ID: 4, Gender: "feminino", IsHidden: true},
	}}
	beds := &fakeBeds{summary: &housing.AvailabilitySummary{TotalCapacity: 12, TotalAvailable: 9}}
	svc := NewService(roster, beds, zerolog.Nop())

	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.TotalAppointments != 4 || sum.Visible != 3 || sum.Hidden != 1 {
		t.Errorf("unexpected totals: %+v", sum)
	}
	if sum.ByGender["feminino"] != 2 || sum.ByGender["masculino"] != 1 {
		t.Errorf("unexpected gender breakdown: %v", sum.ByGender)
	}
	if sum.ByAccommodationMode["pernoite"] != 2 {
		t.Errorf("unexpected accommodation breakdown: %v", sum.ByAccommodationMode)
	}
	if sum.Availability.TotalAvailable != 9 {
		t.Errorf("expected availability embedded, got %+v", sum.Availability)
	}
}

func TestSummary_HiddenExcludedFromBreakdowns(t *testing.T) {
	roster := &fakeRoster{list: []*appointment.Appointment{
		{ID: 1, Gender: "feminino", IsHidden: true},
	}}
	svc := NewService(roster, &fakeBeds{summary: &housing.AvailabilitySummary{}}, zerolog.Nop())

	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.ByGender) != 0 {
		t.Errorf("expected hidden records out of gender counts, got %v", sum.ByGender)
	}
}

func TestSummary_RosterFailure(t *testing.T) {
	roster := &fakeRoster{err: &backend.Error{Kind: backend.KindConnectivity}}
	svc := NewService(roster, &fakeBeds{}, zerolog.Nop())

	if _, err := svc.Summary(context.Background()); !backend.IsConnectivity(err) {
		t.Errorf("expected connectivity error, got %v", err)
	}
}
