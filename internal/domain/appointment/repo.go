package appointment

import "context"

// Repository talks to the backend appointment API. Credentials travel in the
// context, attached by the auth middleware.
type Repository interface {
	List(ctx context.Context) ([]*Appointment, error)
	Get(ctx context.Context, id int) (*Appointment, error)
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	Update(ctx context.Context, id int, a *Appointment) (*Appointment, error)
	SetHidden(ctx context.Context, id int, hidden bool) error
	UploadPhoto(ctx context.Context, id int, fileName string, content []byte) (*Appointment, error)
	AvailableBeds(ctx context.Context) (int, error)
}
