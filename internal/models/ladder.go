package models

import "fmt"

// Ladder identifies one of the two independent matchmaking pools
type Ladder string

const (
	// LadderRT is the regular-track ladder
	LadderRT Ladder = "rt"

	// LadderCT is the custom-track ladder
	LadderCT Ladder = "ct"
)

// Ladders returns both ladders in a stable order
func Ladders() []Ladder {
	return []Ladder{LadderRT, LadderCT}
}

// Other returns the opposite ladder
func (l Ladder) Other() Ladder {
	if l == LadderRT {
		return LadderCT
	}
	return LadderRT
}

// ParseLadder converts a raw string into a Ladder
func ParseLadder(s string) (Ladder, error) {
	switch Ladder(s) {
	case LadderRT:
		return LadderRT, nil
	case LadderCT:
		return LadderCT, nil
	}
	return "", fmt.Errorf("unknown ladder type: %q", s)
}
