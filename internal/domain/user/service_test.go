package user

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/abrigo/intake/internal/platform/backend"
)

type mockRepo struct {
	users      map[int]*User
	login      *loginResponse
	loginErr   error
	registered *Registration
	deleted    []int
	logouts    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[int]*User)}
}

func (m *mockRepo) List(ctx context.Context) ([]*User, error) {
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, id int) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, &backend.Error{Kind: backend.KindNotFound, Status: 404, Message: "not found"}
	}
	return u, nil
}

func (m *mockRepo) Register(ctx context.Context, reg *Registration) (*User, error) {
	m.registered = reg
	return &User{ID: 50, Name: reg.Name, Username: reg.Username, Role: reg.Role}, nil
}

func (m *mockRepo) Update(ctx context.Context, id int, upd *Update) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, &backend.Error{Kind: backend.KindNotFound, Status: 404}
	}
	if upd.Name != "" {
		u.Name = upd.Name
	}
	return u, nil
}

func (m *mockRepo) Delete(ctx context.Context, id int) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockRepo) UploadPhoto(ctx context.Context, id int, fileName string, content []byte) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, &backend.Error{Kind: backend.KindNotFound, Status: 404}
	}
	u.Photo = "photos/" + fileName
	u.PhotoURL = ""
	return u, nil
}

func (m *mockRepo) Login(ctx context.Context, username, password string) (*loginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.login, nil
}

func (m *mockRepo) Logout(ctx context.Context) error {
	m.logouts++
	return nil
}

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, "http://backend", zerolog.Nop())
}

func TestLogin_NormalizesLegacyPhotoPath(t *testing.T) {
	repo := newMockRepo()
	repo.login = &loginResponse{
		Token: "upstream-tok",
		User:  &User{ID: 3, Username: "maria", Role: "admin", Photo: "profile-photos/m.jpg"},
	}
	svc := newTestService(repo)

	result, err := svc.Login(context.Background(), "maria", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token != "upstream-tok" {
		t.Errorf("unexpected token: %q", result.Token)
	}
	if result.Identity.PhotoURL != "http://backend/storage/photos/m.jpg" {
		t.Errorf("expected legacy path repaired, got %q", result.Identity.PhotoURL)
	}
}

func TestLogin_MissingToken(t *testing.T) {
	repo := newMockRepo()
	repo.login = &loginResponse{User: &User{ID: 1}}
	if _, err := newTestService(repo).Login(context.Background(), "x", "y"); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestLogin_PropagatesBackendError(t *testing.T) {
	repo := newMockRepo()
	repo.loginErr = &backend.Error{Kind: backend.KindUnauthorized, Status: 401}
	_, err := newTestService(repo).Login(context.Background(), "x", "bad")
	if !backend.IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	valid := func() *Registration {
		return &Registration{
			Name:                 "Maria Silva",
			Username:             "maria",
			Email:                "maria@example.org",
			Password:             "longenough",
			PasswordConfirmation: "longenough",
			Role:                 RoleAdmin,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Registration)
		field  string
	}{
		{"missing name", func(r *Registration) { r.Name = "" }, "name"},
		{"missing username", func(r *Registration) { r.Username = "" }, "username"},
		{"bad role", func(r *Registration) { r.Role = "boss" }, "role"},
		{"admin without email", func(r *Registration) { r.Email = "" }, "email"},
		{"short password", func(r *Registration) { r.Password = "short"; r.PasswordConfirmation = "short" }, "password"},
		{"mismatch", func(r *Registration) { r.PasswordConfirmation = "different" }, "password_confirmation"},
	}
	svc := newTestService(newMockRepo())
	for _, tt := range tests {
		reg := valid()
		tt.mutate(reg)
		_, err := svc.Register(context.Background(), reg)
		var be *backend.Error
		if !errors.As(err, &be) || be.Field != tt.field {
			t.Errorf("%s: expected %s validation error, got %v", tt.name, tt.field, err)
		}
	}
}

func TestRegister_EmployeeWithoutEmail(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	reg := &Registration{
		Name:                 "João",
		Username:             "joao",
		Password:             "longenough",
		PasswordConfirmation: "longenough",
		Role:                 RoleEmployee,
	}
	if _, err := svc.Register(context.Background(), reg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if repo.registered == nil {
		t.Error("expected upstream registration call")
	}
}

func TestUpdateUser_PasswordMismatch(t *testing.T) {
	repo := newMockRepo()
	repo.users[1] = &User{ID: 1, Username: "ana"}
	svc := newTestService(repo)

	_, err := svc.UpdateUser(context.Background(), 1, &Update{Password: "a12345678", PasswordConfirmation: "b12345678"})
	if !backend.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUploadPhoto_EmptyFile(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, err := svc.UploadPhoto(context.Background(), 1, "x.jpg", nil)
	if !backend.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNormalizePhotoURL_AbsolutePhotoKeptAsIs(t *testing.T) {
	u := &User{Photo: "https://cdn.example.com/rita.jpg"}
	u.NormalizePhotoURL("http://backend")
	if u.PhotoURL != "https://cdn.example.com/rita.jpg" {
		t.Errorf("expected absolute photo kept, got %q", u.PhotoURL)
	}
}

func TestUploadPhoto_NormalizesURL(t *testing.T) {
	repo := newMockRepo()
	repo.users[2] = &User{ID: 2, Username: "rita"}
	svc := newTestService(repo)

	u, err := svc.UploadPhoto(context.Background(), 2, "rita.jpg", []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.PhotoURL != "http://backend/storage/photos/rita.jpg" {
		t.Errorf("unexpected photo url: %q", u.PhotoURL)
	}
}
