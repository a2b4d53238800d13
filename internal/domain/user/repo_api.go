package user

import (
	"context"
	"fmt"

	"github.com/abrigo/intake/internal/platform/backend"
)

// apiRepository is the HTTP implementation of Repository.
type apiRepository struct {
	client *backend.Client
}

func NewAPIRepository(client *backend.Client) Repository {
	return &apiRepository{client: client}
}

func (r *apiRepository) List(ctx context.Context) ([]*User, error) {
	var out []*User
	if err := r.client.Get(ctx, "/api/users", &out); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *apiRepository) Get(ctx context.Context, id int) (*User, error) {
	var out User
	if err := r.client.Get(ctx, fmt.Sprintf("/api/users/%d", id), &out); err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &out, nil
}

func (r *apiRepository) Register(ctx context.Context, reg *Registration) (*User, error) {
	var out User
	if err := r.client.Post(ctx, "/api/register", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *apiRepository) Update(ctx context.Context, id int, upd *Update) (*User, error) {
	var out User
	if err := r.client.Put(ctx, fmt.Sprintf("/api/users/%d", id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *apiRepository) Delete(ctx context.Context, id int) error {
	if err := r.client.Delete(ctx, fmt.Sprintf("/api/users/%d", id)); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func (r *apiRepository) UploadPhoto(ctx context.Context, id int, fileName string, content []byte) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	path := fmt.Sprintf("/api/users/%d/upload-photo", id)
	if err := r.client.PostMultipart(ctx, path, nil, "photo", fileName, content, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return r.Get(ctx, id)
	}
	return out.User, nil
}

func (r *apiRepository) Login(ctx context.Context, username, password string) (*loginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var out loginResponse
	if err := r.client.Post(ctx, "/api/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *apiRepository) Logout(ctx context.Context) error {
	return r.client.Post(ctx, "/api/logout", nil, nil)
}
