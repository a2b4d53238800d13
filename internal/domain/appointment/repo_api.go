package appointment

import (
	"context"
	"fmt"

	"github.com/abrigo/intake/internal/platform/backend"
)

// apiRepository is the HTTP implementation of Repository against the
// accommodation backend.
type apiRepository struct {
	client *backend.Client
}

func NewAPIRepository(client *backend.Client) Repository {
	return &apiRepository{client: client}
}

func (r *apiRepository) List(ctx context.Context) ([]*Appointment, error) {
	var out []*Appointment
	if err := r.client.Get(ctx, "/api/appointments", &out); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

func (r *apiRepository) Get(ctx context.Context, id int) (*Appointment, error) {
	var out Appointment
	if err := r.client.Get(ctx, fmt.Sprintf("/api/appointments/%d", id), &out); err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", id, err)
	}
	return &out, nil
}

func (r *apiRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	var out Appointment
	if err := r.client.Post(ctx, "/api/appointments", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *apiRepository) Update(ctx context.Context, id int, a *Appointment) (*Appointment, error) {
	var out Appointment
	if err := r.client.Put(ctx, fmt.Sprintf("/api/appointments/%d", id), a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *apiRepository) SetHidden(ctx context.Context, id int, hidden bool) error {
	body := map[string]bool{"isHidden": hidden}
	if err := r.client.Put(ctx, fmt.Sprintf("/api/appointments/%d/hide", id), body, nil); err != nil {
		return fmt.Errorf("set hidden on appointment %d: %w", id, err)
	}
	return nil
}

func (r *apiRepository) UploadPhoto(ctx context.Context, id int, fileName string, content []byte) (*Appointment, error) {
	var out struct {
		Appointment *Appointment `json:"appointment"`
	}
	path := fmt.Sprintf("/api/appointments/%d/upload-photo", id)
	if err := r.client.PostMultipart(ctx, path, nil, "photo", fileName, content, &out); err != nil {
		return nil, err
	}
	if out.Appointment == nil {
		return r.Get(ctx, id)
	}
	return out.Appointment, nil
}

func (r *apiRepository) AvailableBeds(ctx context.Context) (int, error) {
	var out struct {
		AvailableBeds int `json:"availableBeds"`
	}
	if err := r.client.Get(ctx, "/api/appointments/available-beds", &out); err != nil {
		return 0, fmt.Errorf("fetch available beds: %w", err)
	}
	return out.AvailableBeds, nil
}
