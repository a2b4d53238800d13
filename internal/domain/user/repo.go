package user

import "context"

// loginResponse is what the backend returns on POST /api/login.
type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Repository talks to the backend user and auth endpoints.
type Repository interface {
	List(ctx context.Context) ([]*User, error)
	Get(ctx context.Context, id int) (*User, error)
	Register(ctx context.Context, reg *Registration) (*User, error)
	Update(ctx context.Context, id int, upd *Update) (*User, error)
	Delete(ctx context.Context, id int) error
	UploadPhoto(ctx context.Context, id int, fileName string, content []byte) (*User, error)
	Login(ctx context.Context, username, password string) (*loginResponse, error)
	Logout(ctx context.Context) error
}
