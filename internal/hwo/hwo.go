// Package hwo parses the hazardous weather outlook text product into typed
// entries. The section parser (Parse) is the canonical implementation and
// consumes the raw product text from the products API; the line-oriented
// parser (ParseLegacy) adapts the legacy HTML transport, which serves the
// same bulletins wrapped in <pre> blocks.
package hwo

import (
	"strings"
	"time"
)

// DayRange is the start/end day-name pair of the extended outlook, parsed
// from a description like "Saturday through Thursday".
type DayRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySection is the near-term outlook with its inline validity description.
type DaySection struct {
	Period string `json:"period"`
	Text   string `json:"info"`
}

// ExtendedSection is the days-two-through-seven outlook.
type ExtendedSection struct {
	Period DayRange `json:"period"`
	Text   string   `json:"info"`
}

// Entry is one parsed bulletin: issuing-office metadata, the decoded zone
// list, and whichever sections the product carried.
type Entry struct {
	OfficeCity  string            `json:"city,omitempty"`
	OfficeState string            `json:"state,omitempty"`
	IssuedAt    time.Time         `json:"datetime,omitempty"`
	Intro       string            `json:"intro,omitempty"`
	Counties    string            `json:"counties,omitempty"`
	Affected    string            `json:"affected,omitempty"`
	Day1        *DaySection       `json:"day1,omitempty"`
	Days27      *ExtendedSection  `json:"day27,omitempty"`
	Spotter     string            `json:"spotter,omitempty"`
	Motion      string            `json:"motion,omitempty"`
	Additional  string            `json:"additional,omitempty"`
	Sections    map[string]string `json:"sections,omitempty"`
	Zones       []string          `json:"zones,omitempty"`
}

// Options steer the section parser.
type Options struct {
	// ZoneFilter drops any block whose decoded zone list does not contain
	// this zone. Blocks are dropped whole, never partially redacted.
	ZoneFilter string

	// IgnoreText suppresses an entry when this substring appears,
	// case-insensitively, in BOTH the day-one and the extended outlook
	// bodies. Both sections must match; one alone never suppresses.
	IgnoreText string
}

// issuanceLayout parses the agency's date line once the timezone token is
// stripped, e.g. "304 PM EDT Fri May 10 2024" becomes "304 PM Fri May 10 2024".
const issuanceLayout = "304 PM Mon Jan 2 2006"

// parseIssuance strips the unreliable timezone abbreviation (third token)
// from a bulletin date line and parses the remainder.
func parseIssuance(line string) (time.Time, bool) {
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return time.Time{}, false
	}
	stripped := append([]string{}, fields[:2]...)
	stripped = append(stripped, fields[3:]...)
	t, err := time.Parse(issuanceLayout, strings.Join(stripped, " "))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// splitOfficeLine splits "National Weather Service Greenville-Spartanburg SC"
// into city and state: the last token is the state, everything between the
// service name and it is the city (rejoined, so multi-word cities survive).
func splitOfficeLine(line string) (city, state string, ok bool) {
	const prefix = "National Weather Service "
	if !strings.HasPrefix(line, prefix) {
		return "", "", false
	}
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(fields) < 2 {
		return "", "", false
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1], true
}

// suppressed reports whether the ignore text appears in both outlook bodies.
func (e *Entry) suppressed(ignore string) bool {
	if ignore == "" || e.Day1 == nil || e.Days27 == nil {
		return false
	}
	needle := strings.ToLower(ignore)
	return strings.Contains(strings.ToLower(e.Day1.Text), needle) &&
		strings.Contains(strings.ToLower(e.Days27.Text), needle)
}

// hasZone reports whether the entry's decoded zone list contains zone.
func (e *Entry) hasZone(zone string) bool {
	for _, z := range e.Zones {
		if z == zone {
			return true
		}
	}
	return false
}
