// Package seating derives the tri-state seat grid from the fixed seat
// universe and the current set of occupied seats. The universe is code
// defined, never stored; the index is rebuilt on every read and the selected
// seat lives only in the session choosing a seat for a new enrollment.
package seating

import (
	"strconv"
	"strings"
	"unicode"
)

// State is the display state of one seat in the grid.
type State string

const (
	StateBooked    State = "booked"
	StateAvailable State = "available"
	StateSelected  State = "selected"
)

// Zone is a physical seating area with a fixed prefix and capacity.
// Seat identity is prefix + sequential integer within [1, capacity].
type Zone struct {
	Name     string `json:"name"`
	Prefix   string `json:"prefix"`
	Capacity int    `json:"capacity"`
}

// Universe is the full fixed seat catalogue.
type Universe struct {
	Zones []Zone
}

// NewUniverse builds the three-zone layout. Non-positive capacities fall back
// to the canonical sizes (15 / 42 / 4).
func NewUniverse(firstFloor, secondFloor, cabin int) Universe {
	if firstFloor <= 0 {
		firstFloor = 15
	}
	if secondFloor <= 0 {
		secondFloor = 42
	}
	if cabin <= 0 {
		cabin = 4
	}
	return Universe{Zones: []Zone{
		{Name: "1st Floor", Prefix: "F", Capacity: firstFloor},
		{Name: "2nd Floor", Prefix: "S", Capacity: secondFloor},
		{Name: "Cabin", Prefix: "C", Capacity: cabin},
	}}
}

// Normalize maps a raw seat identifier to its canonical form ("f03" -> "F3")
// and reports whether it names a seat in the universe.
func (u Universe) Normalize(seatID string) (string, bool) {
	raw := strings.ToUpper(strings.TrimSpace(seatID))
	if raw == "" {
		return "", false
	}

	split := 0
	for split < len(raw) && unicode.IsLetter(rune(raw[split])) {
		split++
	}
	if split == 0 || split == len(raw) {
		return "", false
	}

	prefix := raw[:split]
	num, err := strconv.Atoi(raw[split:])
	if err != nil || num < 1 {
		return "", false
	}

	for _, zone := range u.Zones {
		if zone.Prefix == prefix && num <= zone.Capacity {
			return prefix + strconv.Itoa(num), true
		}
	}
	return "", false
}

// Contains reports whether the identifier names a seat in the universe.
func (u Universe) Contains(seatID string) bool {
	_, ok := u.Normalize(seatID)
	return ok
}

// Seat is one cell of the rendered grid.
type Seat struct {
	ID    string `json:"id"`
	State State  `json:"state"`
}

// ZoneLayout is a zone with its fully enumerated seat states.
type ZoneLayout struct {
	Zone
	Seats []Seat `json:"seats"`
}

// Index produces the tri-state grid for every seat in the universe. A seat
// is booked when its identifier appears (case-insensitively) among the
// occupied seat numbers; booked wins over an attempted selection. At most one
// seat comes out selected.
func (u Universe) Index(occupied []string, selected string) []ZoneLayout {
	booked := u.occupiedSet(occupied)

	sel := ""
	if id, ok := u.Normalize(selected); ok {
		if _, taken := booked[id]; !taken {
			sel = id
		}
	}

	layouts := make([]ZoneLayout, 0, len(u.Zones))
	for _, zone := range u.Zones {
		layout := ZoneLayout{Zone: zone, Seats: make([]Seat, 0, zone.Capacity)}
		for i := 1; i <= zone.Capacity; i++ {
			id := zone.Prefix + strconv.Itoa(i)
			state := StateAvailable
			if _, taken := booked[id]; taken {
				state = StateBooked
			} else if id == sel {
				state = StateSelected
			}
			layout.Seats = append(layout.Seats, Seat{ID: id, State: state})
		}
		layouts = append(layouts, layout)
	}
	return layouts
}

// Select applies a click to the current selection and returns the new one.
// Clicking a booked seat is a no-op; selecting a new seat replaces the
// previous selection.
func (u Universe) Select(current, clicked string, occupied []string) string {
	id, ok := u.Normalize(clicked)
	if !ok {
		return current
	}
	if _, taken := u.occupiedSet(occupied)[id]; taken {
		return current
	}
	return id
}

func (u Universe) occupiedSet(occupied []string) map[string]struct{} {
	set := make(map[string]struct{}, len(occupied))
	for _, raw := range occupied {
		if id, ok := u.Normalize(raw); ok {
			set[id] = struct{}{}
		}
	}
	return set
}
