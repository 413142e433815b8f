package models

import "fmt"

// Format is a votable game mode that determines team shape
type Format string

const (
	// FormatFFA puts every player on their own team
	FormatFFA Format = "FFA"

	// Format2v2 splits the lineup into teams of two
	Format2v2 Format = "2v2"

	// Format3v3 splits the lineup into teams of three
	Format3v3 Format = "3v3"

	// Format4v4 splits the lineup into teams of four
	Format4v4 Format = "4v4"

	// Format6v6 splits the lineup into two balanced halves
	Format6v6 Format = "6v6"
)

// Formats returns all votable formats in display order
func Formats() []Format {
	return []Format{FormatFFA, Format2v2, Format3v3, Format4v4, Format6v6}
}

// TeamSize returns the fixed-chunk team size for a format. Formats that are
// not fixed-chunk (FFA, 6v6) return 0.
func (f Format) TeamSize() int {
	switch f {
	case Format2v2:
		return 2
	case Format3v3:
		return 3
	case Format4v4:
		return 4
	}
	return 0
}

// ParseFormat converts a raw string into a Format
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if Format(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format: %q", s)
}
