package hwo

import (
	"regexp"
	"strings"
)

// introLeadIn opens the intro paragraph of every outlook.
const introLeadIn = "This Hazardous Weather Outlook is for"

var (
	// segmentRe matches an end-of-segment marker: a line that starts with
	// "$$", optionally followed by trailing text.
	segmentRe = regexp.MustCompile(`(?m)^\$\$.*$`)

	// dottedHeaderRe matches ".DAY ONE...This Afternoon and Tonight" style
	// headers: dotted uppercase name, ellipsis, optional inline description.
	dottedHeaderRe = regexp.MustCompile(`^\.([A-Z][A-Z0-9 ./-]*?)\.\.\.(.*)$`)

	// colonHeaderRe matches uppercase lines ending in a colon, such as
	// "GENERAL STORM MOTION OF THE DAY:".
	colonHeaderRe = regexp.MustCompile(`^([A-Z][A-Z0-9 .'/-]*[A-Z0-9]):\s*$`)

	// dividerRe matches the "&&" and "$$" divider lines inside a block.
	dividerRe = regexp.MustCompile(`^(?:&&|\$\$)\s*$`)
)

type headerKind int

const (
	headerDotted headerKind = iota
	headerColon
	headerDivider
)

type headerMatch struct {
	line int
	kind headerKind
	name string
	desc string
}

// Parse converts raw product text into entries, one per "$$"-terminated
// block. Blocks that fail structural invariants are dropped, never
// fabricated; an active zone filter drops whole non-matching blocks before
// any section parsing.
func Parse(raw string, opts Options) []Entry {
	var entries []Entry
	for _, block := range segmentRe.Split(raw, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		entry, ok := parseBlock(block, opts)
		if !ok {
			continue
		}
		if entry.suppressed(opts.IgnoreText) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseBlock(block string, opts Options) (Entry, bool) {
	lines := strings.Split(block, "\n")
	var entry Entry

	for _, line := range lines {
		line = strings.TrimRight(line, "\r ")
		if entry.OfficeCity == "" {
			if city, state, ok := splitOfficeLine(line); ok {
				entry.OfficeCity = city
				entry.OfficeState = state
				continue
			}
		}
		if entry.IssuedAt.IsZero() {
			if t, ok := parseIssuance(line); ok {
				entry.IssuedAt = t
				continue
			}
		}
		if entry.Zones == nil && IsZoneLine(line) {
			entry.Zones = DecodeZoneLine(line)
		}
	}

	// A block for some other zone is dropped whole, before section parsing:
	// partial entries are never returned for non-matching zones.
	if opts.ZoneFilter != "" && !entry.hasZone(opts.ZoneFilter) {
		return Entry{}, false
	}

	headers := scanHeaders(lines)
	if len(headers) == 0 {
		// Missing header lines is a structural failure; drop the block.
		return Entry{}, false
	}

	entry.Intro = extractIntro(lines, headers[0].line)

	for i, h := range headers {
		start := h.line + 1
		end := len(lines)
		if i+1 < len(headers) {
			end = headers[i+1].line
		}
		body := collapseParagraphs(strings.Join(lines[start:end], "\n"))
		entry.assignSection(h, body)
	}

	return entry, true
}

// scanHeaders applies the composite header pattern line by line.
func scanHeaders(lines []string) []headerMatch {
	var headers []headerMatch
	for i, line := range lines {
		line = strings.TrimRight(line, "\r ")
		if m := dottedHeaderRe.FindStringSubmatch(line); m != nil {
			headers = append(headers, headerMatch{line: i, kind: headerDotted, name: m[1], desc: strings.TrimSpace(m[2])})
			continue
		}
		if dividerRe.MatchString(line) {
			headers = append(headers, headerMatch{line: i, kind: headerDivider})
			continue
		}
		if m := colonHeaderRe.FindStringSubmatch(line); m != nil {
			headers = append(headers, headerMatch{line: i, kind: headerColon, name: m[1]})
		}
	}
	return headers
}

// assignSection routes a header's body to its named field. Unrecognized
// headers are kept verbatim, lower-cased.
func (e *Entry) assignSection(h headerMatch, body string) {
	switch h.kind {
	case headerDivider:
		if body != "" {
			e.Additional = body
		}
		return
	case headerColon:
		if strings.HasPrefix(strings.ToLower(h.name), "general storm motion") {
			e.Motion = body
			return
		}
	}

	lower := strings.ToLower(h.name)
	switch {
	case strings.HasPrefix(lower, "day one"):
		e.Day1 = &DaySection{
			Period: strings.ReplaceAll(h.desc, ".", ""),
			Text:   body,
		}
	case strings.HasPrefix(lower, "days two through seven"):
		e.Days27 = &ExtendedSection{
			Period: parseDayRange(h.desc),
			Text:   body,
		}
	case strings.HasPrefix(lower, "spotter information statement"):
		e.Spotter = body
	default:
		if e.Sections == nil {
			e.Sections = make(map[string]string)
		}
		e.Sections[lower] = body
	}
}

// parseDayRange splits a description like "Saturday through Thursday" into
// its start and end day names.
func parseDayRange(desc string) DayRange {
	desc = strings.ReplaceAll(desc, ".", "")
	parts := strings.SplitN(desc, " through ", 2)
	if len(parts) != 2 {
		return DayRange{Start: desc}
	}
	return DayRange{Start: strings.TrimSpace(parts[0]), End: strings.TrimSpace(parts[1])}
}

// extractIntro returns the text between the lead-in phrase and the first
// header, newline-collapsed.
func extractIntro(lines []string, firstHeader int) string {
	for i := 0; i < firstHeader; i++ {
		idx := strings.Index(lines[i], introLeadIn)
		if idx < 0 {
			continue
		}
		intro := []string{strings.TrimSpace(lines[i][idx+len(introLeadIn):])}
		for _, line := range lines[i+1 : firstHeader] {
			intro = append(intro, strings.TrimRight(line, "\r "))
		}
		return collapseParagraphs(strings.Join(intro, "\n"))
	}
	return ""
}

// collapseParagraphs joins single-newline-wrapped lines into spaces while
// preserving blank-line paragraph breaks.
var paragraphBreakRe = regexp.MustCompile(`(?:\r?\n){2,}`)

func collapseParagraphs(s string) string {
	paragraphs := paragraphBreakRe.Split(strings.TrimSpace(s), -1)
	out := paragraphs[:0]
	for _, p := range paragraphs {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
