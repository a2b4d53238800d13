package housing

// Room is a physical room in the shelter.
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Bed is one bed slot inside a room, joined with its current occupant.
type Bed struct {
	ID           int    `json:"id"`
	RoomID       int    `json:"room_id"`
	Number       int    `json:"number"`
	IsAvailable  bool   `json:"is_available"`
	OccupantName string `json:"occupant_name,omitempty"`
}

// RoomAvailability is the derived occupancy line for one room.
type RoomAvailability struct {
	RoomID    int    `json:"room_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Occupied  int    `json:"occupied"`
	Available int    `json:"available"`
}

// AvailabilitySummary is the whole-shelter view derived from the current
// appointment roster.
type AvailabilitySummary struct {
	Rooms          []RoomAvailability `json:"rooms"`
	TotalCapacity  int                `json:"total_capacity"`
	TotalAvailable int                `json:"total_available"`
	Degraded       bool               `json:"degraded,omitempty"`
}

// Occupancy is the slice of an appointment the reconciler needs: where the
// person sleeps and whether the record is hidden from the active roster.
type Occupancy struct {
	RoomID       *int
	BedID        *int
	Hidden       bool
	OccupantName string
}

// Occupies reports whether this record holds a bed in the active roster.
// Hidden records and records without an assigned bed never count.
func (o Occupancy) Occupies() bool {
	return !o.Hidden && o.RoomID != nil && o.BedID != nil
}

// fallbackRooms is used when the room reference fetch fails, so the
// availability view renders a zeroed structure instead of erroring out.
func fallbackRooms() []*Room {
	return []*Room{
		{ID: 1, Name: "Quarto A"},
		{ID: 2, Name: "Quarto B"},
		{ID: 3, Name: "Quarto C"},
	}
}
