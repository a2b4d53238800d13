package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAPIRepository_States(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/estados" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":35,"sigla":"SP","nome":"São Paulo","regiao":{"nome":"Sudeste"}}]`))
	}))
	defer srv.Close()

	repo := NewAPIRepository(srv.URL, srv.URL, 2*time.Second)
	states, err := repo.States(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 1 || states[0].Sigla != "SP" || states[0].Region != "Sudeste" {
		t.Errorf("unexpected states: %+v", states)
	}
}

func TestAPIRepository_CountryNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":{"common":"Brazil"}},{"name":{"common":"Chile"}}]`))
	}))
	defer srv.Close()

	repo := NewAPIRepository(srv.URL, srv.URL, 2*time.Second)
	names, err := repo.CountryNames(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "Brazil" {
		t.Errorf("unexpected names: %+v", names)
	}
}

func TestAPIRepository_CitiesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	repo := NewAPIRepository(srv.URL, srv.URL, 2*time.Second)
	if _, err := repo.CitiesByState(context.Background(), 35); err == nil {
		t.Error("expected error for 500 response")
	}
}
