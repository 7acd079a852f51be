package hwo

import (
	"strings"
)

// LegacyOptions steer the line-oriented parser used on the legacy HTML
// transport.
type LegacyOptions struct {
	// OfficeCity/OfficeState restrict parsing to bulletins issued by one
	// office when MatchOffice is set. The parser stops at the first
	// non-matching bulletin, mirroring the historical behavior; on a page
	// covering several offices this can truncate the product, which is why
	// the section parser is the canonical path.
	OfficeCity  string
	OfficeState string
	MatchOffice bool

	IgnoreText string
}

// legacyState names the phases of the line-oriented walk. Transitions are
// driven by line position (title, office, date line), blank lines, and
// section headers.
type legacyState int

const (
	stateTitle legacyState = iota
	stateOffice
	stateDateLine
	stateCounty
	stateAffectedAreas
	stateIdle
	stateDayOne
	stateDaysTwoSeven
	stateSpotterActivation
	stateStormMotion
	stateDone
)

// legacyAccum carries the partial entry and the per-state text buffer.
type legacyAccum struct {
	entry      Entry
	buf        []string
	state      legacyState
	dayPeriod  string
	dayRange   DayRange
	lineNumber int
}

func (a *legacyAccum) flushText() string {
	text := strings.TrimSpace(strings.Join(a.buf, " "))
	a.buf = a.buf[:0]
	return text
}

func (a *legacyAccum) flushBlock() string {
	text := strings.TrimSpace(strings.Join(a.buf, "\n"))
	a.buf = a.buf[:0]
	return text
}

// closeSection finalizes whichever section was being accumulated before a
// new header takes over.
func (a *legacyAccum) closeSection() {
	switch a.state {
	case stateCounty:
		a.entry.Counties = a.flushText()
	case stateAffectedAreas:
		a.entry.Affected = a.flushText()
	case stateDayOne:
		if text := a.flushBlock(); text != "" {
			a.entry.Day1 = &DaySection{Period: a.dayPeriod, Text: text}
		}
	case stateDaysTwoSeven:
		if text := a.flushBlock(); text != "" {
			a.entry.Days27 = &ExtendedSection{Period: a.dayRange, Text: text}
		}
	case stateSpotterActivation:
		if text := a.flushText(); text != "" {
			a.entry.Spotter = text
		}
	case stateStormMotion:
		a.entry.Motion = a.flushBlock()
	}
	a.buf = a.buf[:0]
}

// ParseLegacy walks one bulletin line by line with an explicit state machine:
// Title -> Office -> DateLine -> County -> AffectedAreas, then header-driven
// section states until an end marker. Returns false when the bulletin is
// filtered out or structurally empty.
func ParseLegacy(text string, opts LegacyOptions) (Entry, bool) {
	a := &legacyAccum{state: stateTitle}

	for _, line := range strings.Split(text, "\n") {
		a.lineNumber++
		line = strings.TrimRight(line, "\r ")
		lower := strings.ToLower(line)

		if line == "" {
			a.handleBlank()
			continue
		}

		switch {
		case strings.HasPrefix(lower, ".day one"):
			a.closeSection()
			a.dayPeriod = strings.ReplaceAll(strings.TrimPrefix(line, ".DAY ONE..."), ".", "")
			a.state = stateDayOne
			continue

		case strings.HasPrefix(lower, ".days two through seven"):
			a.closeSection()
			desc := strings.TrimPrefix(line, ".DAYS TWO THROUGH SEVEN...")
			a.dayRange = parseDayRange(desc)
			a.state = stateDaysTwoSeven
			continue

		case strings.HasPrefix(lower, ".spotter information statement"):
			a.closeSection()
			a.state = stateSpotterActivation
			continue

		case strings.HasPrefix(lower, "general storm motion of the day:"):
			a.closeSection()
			a.state = stateStormMotion
			continue

		case strings.HasPrefix(line, "$$") || strings.HasPrefix(line, "&&"):
			a.closeSection()
			a.state = stateDone
		}

		if a.state == stateDone {
			break
		}

		switch a.state {
		case stateTitle:
			// Line one is the product title; nothing to keep.
			a.state = stateOffice

		case stateOffice:
			city, state, ok := splitOfficeLine(line)
			if !ok {
				continue
			}
			if opts.MatchOffice && (city != opts.OfficeCity || state != opts.OfficeState) {
				// Historical early exit: a non-matching office ends the walk.
				return Entry{}, false
			}
			a.entry.OfficeCity = city
			a.entry.OfficeState = state
			a.state = stateDateLine

		case stateDateLine:
			if t, ok := parseIssuance(line); ok {
				a.entry.IssuedAt = t
				a.state = stateCounty
			}

		case stateCounty:
			if a.entry.Zones == nil && IsZoneLine(line) {
				a.entry.Zones = DecodeZoneLine(line)
				continue
			}
			a.buf = append(a.buf, line)

		case stateAffectedAreas, stateSpotterActivation:
			a.buf = append(a.buf, line)

		case stateDayOne, stateDaysTwoSeven, stateStormMotion:
			a.buf = append(a.buf, line)
		}
	}

	a.closeSection()

	entry := a.entry
	if entry.OfficeCity == "" && entry.Day1 == nil && entry.Days27 == nil && entry.Spotter == "" {
		return Entry{}, false
	}
	if entry.suppressed(opts.IgnoreText) {
		return Entry{}, false
	}
	return entry, true
}

// handleBlank advances the blank-line-driven transitions. County parsing only
// completes after the fixed header lines, so early blanks are ignored.
func (a *legacyAccum) handleBlank() {
	switch a.state {
	case stateCounty:
		if a.lineNumber > 4 {
			a.entry.Counties = a.flushText()
			a.state = stateAffectedAreas
		}
	case stateAffectedAreas:
		a.entry.Affected = a.flushText()
		a.state = stateIdle
	case stateSpotterActivation:
		if len(a.buf) > 0 {
			a.entry.Spotter = a.flushText()
			a.state = stateIdle
		}
	}
}
