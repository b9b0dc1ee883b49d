package seat

import (
	"sort"

	"github.com/google/uuid"
)

// Position keys a seat inside a showing's grid.
type Position struct {
	Row    string `json:"row"`
	Column int    `json:"column"`
}

// MapSeat is one cell of the seat map view.
type MapSeat struct {
	ID         uuid.UUID `json:"id"`
	Column     int       `json:"column"`
	Location   string    `json:"location"`
	PricePaise int64     `json:"price"`
	Vacant     bool      `json:"vacant"`
}

// MapRow is one row of a seat-type section, ordered by column.
type MapRow struct {
	Row   string    `json:"row"`
	Seats []MapSeat `json:"seats"`
}

// Section groups the rows of one seat type.
type Section struct {
	SeatType   string   `json:"seat_type"`
	PricePaise int64    `json:"price"`
	Vacant     int      `json:"vacant"`
	Total      int      `json:"total"`
	Rows       []MapRow `json:"rows"`
}

// SeatMap is the view model of a showing: type, then row, then column.
type SeatMap struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	Sections   []Section `json:"sections"`
}

// BuildSeatMap groups seats by type, row and column. Sections are ordered
// by descending price so premium categories come first; ties by name.
func BuildSeatMap(scheduleID uuid.UUID, seats []*Seat) SeatMap {
	type rowKey struct {
		seatType string
		row      string
	}

	sections := make(map[string]*Section)
	rows := make(map[rowKey][]MapSeat)

	for _, s := range seats {
		sec, ok := sections[s.seatType]
		if !ok {
			sec = &Section{SeatType: s.seatType, PricePaise: s.pricePaise}
			sections[s.seatType] = sec
		}
		sec.Total++
		if s.vacant {
			sec.Vacant++
		}
		if s.pricePaise > sec.PricePaise {
			sec.PricePaise = s.pricePaise
		}

		k := rowKey{s.seatType, s.row}
		rows[k] = append(rows[k], MapSeat{
			ID:         s.id,
			Column:     s.column,
			Location:   s.location,
			PricePaise: s.pricePaise,
			Vacant:     s.vacant,
		})
	}

	for k, cells := range rows {
		sort.Slice(cells, func(i, j int) bool { return cells[i].Column < cells[j].Column })
		sec := sections[k.seatType]
		sec.Rows = append(sec.Rows, MapRow{Row: k.row, Seats: cells})
	}

	out := make([]Section, 0, len(sections))
	for _, sec := range sections {
		sort.Slice(sec.Rows, func(i, j int) bool { return rowLess(sec.Rows[i].Row, sec.Rows[j].Row) })
		out = append(out, *sec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PricePaise != out[j].PricePaise {
			return out[i].PricePaise > out[j].PricePaise
		}
		return out[i].SeatType < out[j].SeatType
	})

	return SeatMap{ScheduleID: scheduleID, Sections: out}
}

// rowLess orders "B" before "AA".
func rowLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
