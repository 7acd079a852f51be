package hwo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Zone lines look like "GAZ010-018-026>028-110815-": a three-letter prefix
// plus three-digit codes separated by dashes. The prefix carries forward to
// bare numeric codes until a new prefix appears, and "start>end" abbreviates
// an inclusive range. The trailing six-digit token is the purge time, not a
// zone.
var (
	zoneLineRe  = regexp.MustCompile(`^[A-Z]{3}\d{3}[->]`)
	zoneCodeRe  = regexp.MustCompile(`^([A-Z]{3})?(\d{3})$`)
	zoneRangeRe = regexp.MustCompile(`^([A-Z]{3})?(\d{3})>(?:[A-Z]{3})?(\d{3})$`)
)

// IsZoneLine reports whether a line opens with a zone code.
func IsZoneLine(line string) bool {
	return zoneLineRe.MatchString(line)
}

// DecodeZoneLine expands a zone line into the explicit zone ID sequence.
// Unrecognized tokens (the purge time, stray text) are skipped.
func DecodeZoneLine(line string) []string {
	var zones []string
	prefix := ""

	for _, token := range strings.Split(strings.TrimRight(strings.TrimSpace(line), "-"), "-") {
		if m := zoneRangeRe.FindStringSubmatch(token); m != nil {
			if m[1] != "" {
				prefix = m[1]
			}
			if prefix == "" {
				continue
			}
			start, _ := strconv.Atoi(m[2])
			end, _ := strconv.Atoi(m[3])
			for n := start; n <= end; n++ {
				zones = append(zones, fmt.Sprintf("%s%03d", prefix, n))
			}
			continue
		}

		if m := zoneCodeRe.FindStringSubmatch(token); m != nil {
			if m[1] != "" {
				prefix = m[1]
			}
			if prefix == "" {
				continue
			}
			zones = append(zones, prefix+m[2])
		}
	}

	return zones
}
