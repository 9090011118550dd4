// Package stations holds the read-only transit station directory and its
// substring matching used by the search coordinator.
package stations

import (
	"strings"

	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/geo"
)

// Directory is an immutable snapshot of the station directory. Matching is
// purely local; the external source is only consulted when the snapshot is
// loaded at startup.
type Directory struct {
	stations []Station
}

// NewDirectory creates a directory over the given snapshot.
func NewDirectory(stations []Station) *Directory {
	return &Directory{stations: stations}
}

// Len returns the number of stations in the snapshot.
func (d *Directory) Len() int {
	return len(d.stations)
}

// Match returns up to limit stations whose display name contains the term,
// case-insensitively. Ranking beyond directory order is not attempted.
func (d *Directory) Match(term string, limit int) []transport.StationMatch {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return nil
	}

	matches := make([]transport.StationMatch, 0, limit)
	for _, s := range d.stations {
		name := s.DisplayName
		if name == "" {
			name = s.Name
		}
		if !strings.Contains(strings.ToLower(name), term) {
			continue
		}

		matches = append(matches, transport.StationMatch{
			ID:          s.ID,
			Name:        name,
			Zone:        s.Zone,
			Lines:       s.Lines,
			Coordinates: geo.Point{Lat: s.Lat, Lon: s.Lon},
		})
		if len(matches) == limit {
			break
		}
	}

	return matches
}
