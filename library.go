package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed libraries.json
var librariesJSON []byte

// Library describes one bookable library from the static catalog.
type Library struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	BoundingBox BoundingBox `json:"boundingBox"`
	Areas       []Area      `json:"areas"`
}

// Area is one bookable zone inside a library. DefaultSeat is the seat
// identity the booking flow selects in that zone.
type Area struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	DefaultSeat string `json:"defaultSeat"`
}

// BoundingBox is the library's geolocation envelope. The centroid is what
// gets spoofed into the browser so the site believes the user is on-site.
type BoundingBox struct {
	MinLatitude  float64 `json:"minLatitude"`
	MaxLatitude  float64 `json:"maxLatitude"`
	MinLongitude float64 `json:"minLongitude"`
	MaxLongitude float64 `json:"maxLongitude"`
}

// Centroid returns the midpoint of the bounding box, latitude then
// longitude.
func (b BoundingBox) Centroid() (float64, float64) {
	return (b.MinLatitude + b.MaxLatitude) / 2, (b.MinLongitude + b.MaxLongitude) / 2
}

// Catalog holds the read-only library reference data for a process.
type Catalog struct {
	Libraries []Library
}

// LoadCatalog parses the embedded library reference data.
func LoadCatalog() (*Catalog, error) {
	var libs []Library
	if err := json.Unmarshal(librariesJSON, &libs); err != nil {
		return nil, fmt.Errorf("failed to parse library catalog: %w", err)
	}
	if len(libs) == 0 {
		return nil, fmt.Errorf("library catalog is empty")
	}
	return &Catalog{Libraries: libs}, nil
}

// Codes returns the valid library codes, sorted.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.Libraries))
	for _, lib := range c.Libraries {
		codes = append(codes, lib.Code)
	}
	sort.Strings(codes)
	return codes
}

// Library resolves a library code. Unknown codes fail with a
// ConfigurationError naming the valid set, before any session is opened.
func (c *Catalog) Library(code string) (*Library, error) {
	for i := range c.Libraries {
		if c.Libraries[i].Code == code {
			return &c.Libraries[i], nil
		}
	}
	return nil, unknownCodeError("library_code", code, c.Codes())
}

// Area resolves an area code within a library. An empty code selects the
// library's first area.
func (l *Library) Area(code string) (*Area, error) {
	if code == "" && len(l.Areas) > 0 {
		return &l.Areas[0], nil
	}
	valid := make([]string, 0, len(l.Areas))
	for i := range l.Areas {
		if l.Areas[i].Code == code {
			return &l.Areas[i], nil
		}
		valid = append(valid, l.Areas[i].Code)
	}
	return nil, unknownCodeError("area_code", code, valid)
}
