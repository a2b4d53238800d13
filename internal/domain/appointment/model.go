package appointment

import (
	"fmt"
	"strings"
	"time"
)

// AdditionalInfo is the accommodation detail block nested in an appointment.
// Older records come back from the API without it, so callers must go
// through Normalize before touching these fields.
type AdditionalInfo struct {
	Ethnicity              string `json:"ethnicity"`
	Addictions             string `json:"addictions"`
	IsAccompanied          bool   `json:"is_accompanied"`
	Benefits               string `json:"benefits"`
	IsLactating            bool   `json:"is_lactating"`
	HasDisability          bool   `json:"has_disability"`
	ReasonForAccommodation string `json:"reason_for_accommodation"`
	HasReligion            bool   `json:"has_religion"`
	Religion               string `json:"religion"`
	HasChronicDisease      bool   `json:"has_chronic_disease"`
	ChronicDisease         string `json:"chronic_disease"`
	EducationLevel         string `json:"education_level"`
	Nationality            string `json:"nationality"`
	RoomID                 *int   `json:"room_id"`
	BedID                  *int   `json:"bed_id"`
	StayDuration           *int   `json:"stay_duration"`
	ExitDate               string `json:"exit_date,omitempty"`

	// Derived for display, never sent back to the backend.
	RoomDisplayName string `json:"roomDisplayName,omitempty"`
	BedDisplayName  string `json:"bedDisplayName,omitempty"`
}

// Appointment is an intake record for a sheltered person.
type Appointment struct {
	ID                int             `json:"id,omitempty"`
	Name              string          `json:"name"`
	LastName          string          `json:"last_name"`
	CPF               string          `json:"cpf"`
	Date              string          `json:"date,omitempty"`
	ArrivalDate       string          `json:"arrival_date"`
	Time              string          `json:"time"`
	BirthDate         string          `json:"birth_date,omitempty"`
	State             string          `json:"state"`
	City              string          `json:"city"`
	MotherName        string          `json:"mother_name"`
	Phone             string          `json:"phone"`
	Observation       string          `json:"observation"`
	Gender            string          `json:"gender"`
	AccommodationMode string          `json:"accommodation_mode"`
	ForeignCountry    bool            `json:"foreign_country,omitempty"`
	NoPhone           bool            `json:"noPhone,omitempty"`
	IsHidden          bool            `json:"isHidden"`
	Replace           bool            `json:"replace,omitempty"`
	Photo             string          `json:"photo,omitempty"`
	PhotoURL          string          `json:"photo_url,omitempty"`
	AdditionalInfo    *AdditionalInfo `json:"additionalInfo"`
}

const notAllocated = "Não alocado"

// Normalize repairs a record as it arrives from the backend: guarantees a
// non-nil AdditionalInfo, makes the photo URL absolute and attaches room and
// bed display names.
func (a *Appointment) Normalize(storageBase string, roomNames map[int]string) {
	if a.AdditionalInfo == nil {
		a.AdditionalInfo = &AdditionalInfo{}
	}
	info := a.AdditionalInfo

	if a.PhotoURL == "" && a.Photo != "" {
		if strings.HasPrefix(a.Photo, "http") {
			a.PhotoURL = a.Photo
		} else {
			a.PhotoURL = strings.TrimRight(storageBase, "/") + "/storage/" + strings.TrimLeft(a.Photo, "/")
		}
	}

	info.RoomDisplayName = notAllocated
	if info.RoomID != nil {
		if name, ok := roomNames[*info.RoomID]; ok {
			info.RoomDisplayName = name
		} else {
			info.RoomDisplayName = fmt.Sprintf("Quarto %d", *info.RoomID)
		}
	}

	info.BedDisplayName = notAllocated
	if info.BedID != nil {
		info.BedDisplayName = fmt.Sprintf("Cama %d", *info.BedID)
	}
}

// FullName joins first and last name for display and search.
func (a *Appointment) FullName() string {
	return strings.TrimSpace(a.Name + " " + a.LastName)
}

// Timestamp parses the record's registration date for sorting. Records with
// malformed dates sort as the zero time.
func (a *Appointment) Timestamp() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, a.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Age returns the person's age in full years at the reference time, or -1
// when the birth date cannot be parsed.
func (a *Appointment) Age(now time.Time) int {
	birth, err := time.Parse("2006-01-02", a.BirthDate)
	if err != nil {
		return -1
	}
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
