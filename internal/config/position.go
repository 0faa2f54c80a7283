package config

// Position places the overlay card on screen
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTop         Position = "top"
	PositionTopRight    Position = "top-right"
	PositionLeft        Position = "left"
	PositionRight       Position = "right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottom      Position = "bottom"
	PositionBottomRight Position = "bottom-right"
)

// Positions lists every position in menu order
var Positions = []Position{
	PositionTopLeft,
	PositionTop,
	PositionTopRight,
	PositionLeft,
	PositionRight,
	PositionBottomLeft,
	PositionBottom,
	PositionBottomRight,
}

var positionLabels = map[Position]string{
	PositionTopLeft:     "Top Left",
	PositionTop:         "Top",
	PositionTopRight:    "Top Right",
	PositionLeft:        "Left",
	PositionRight:       "Right",
	PositionBottomLeft:  "Bottom Left",
	PositionBottom:      "Bottom",
	PositionBottomRight: "Bottom Right",
}

// Valid reports whether p is one of Positions
func (p Position) Valid() bool {
	_, ok := positionLabels[p]
	return ok
}

// Label returns the human-readable name
func (p Position) Label() string {
	if l, ok := positionLabels[p]; ok {
		return l
	}
	return string(p)
}

// Next returns the following position in menu order, wrapping around
func (p Position) Next() Position {
	for i, pos := range Positions {
		if pos == p {
			return Positions[(i+1)%len(Positions)]
		}
	}
	return PositionTop
}
