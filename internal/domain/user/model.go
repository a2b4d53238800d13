package user

import "strings"

// Roles accepted by the backend.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is a staff account.
type User struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Photo    string `json:"photo,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Registration is the payload for creating a staff account.
type Registration struct {
	Name                 string `json:"name"`
	Username             string `json:"username"`
	Email                string `json:"email,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role"`
}

// Update is a partial edit of a staff account. Empty password means keep
// the current one.
type Update struct {
	Name                 string `json:"name,omitempty"`
	Username             string `json:"username,omitempty"`
	Email                string `json:"email,omitempty"`
	Password             string `json:"password,omitempty"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
	Role                 string `json:"role,omitempty"`
}

// NormalizePhotoURL makes the stored photo path absolute and repairs the
// legacy profile-photos directory the backend still emits for old accounts.
func (u *User) NormalizePhotoURL(storageBase string) {
	url := u.PhotoURL
	if url == "" && u.Photo != "" {
		if strings.HasPrefix(u.Photo, "http") {
			url = u.Photo
		} else {
			url = strings.TrimRight(storageBase, "/") + "/storage/" + strings.TrimLeft(u.Photo, "/")
		}
	}
	u.PhotoURL = strings.Replace(url, "profile-photos/", "photos/", 1)
}
