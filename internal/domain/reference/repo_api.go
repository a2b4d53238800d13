package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// apiRepository reads from the IBGE localities API and the REST Countries
// API. Both are public and unauthenticated, so it carries its own plain
// HTTP client instead of the backend one.
type apiRepository struct {
	localitiesURL string
	countriesURL  string
	http          *http.Client
}

func NewAPIRepository(localitiesURL, countriesURL string, timeout time.Duration) Repository {
	return &apiRepository{
		localitiesURL: strings.TrimRight(localitiesURL, "/"),
		countriesURL:  strings.TrimRight(countriesURL, "/"),
		http:          &http.Client{Timeout: timeout},
	}
}

type apiState struct {
	ID     int    `json:"id"`
	Sigla  string `json:"sigla"`
	Nome   string `json:"nome"`
	Regiao struct {
		Nome string `json:"nome"`
	} `json:"regiao"`
}

type apiCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

func (r *apiRepository) States(ctx context.Context) ([]*State, error) {
	var raw []apiState
	if err := r.getJSON(ctx, r.localitiesURL+"/estados?orderBy=nome", &raw); err != nil {
		return nil, fmt.Errorf("fetch states: %w", err)
	}
	states := make([]*State, 0, len(raw))
	for _, s := range raw {
		states = append(states, &State{ID: s.ID, Sigla: s.Sigla, Nome: s.Nome, Region: s.Regiao.Nome})
	}
	return states, nil
}

func (r *apiRepository) CitiesByState(ctx context.Context, stateID int) ([]*City, error) {
	var cities []*City
	url := fmt.Sprintf("%s/estados/%d/municipios", r.localitiesURL, stateID)
	if err := r.getJSON(ctx, url, &cities); err != nil {
		return nil, fmt.Errorf("fetch cities for state %d: %w", stateID, err)
	}
	return cities, nil
}

func (r *apiRepository) CountryNames(ctx context.Context) ([]string, error) {
	var raw []apiCountry
	if err := r.getJSON(ctx, r.countriesURL+"/all?fields=name", &raw); err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	names := make([]string, 0, len(raw))
	for _, c := range raw {
		if c.Name.Common != "" {
			names = append(names, c.Name.Common)
		}
	}
	return names, nil
}

func (r *apiRepository) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
