// Package alert classifies inbound alert events by their product code and
// routes them to configured webhook actions.
package alert

// Severity is the tier an alert type code classifies into.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityWatch    Severity = "watch"
	SeverityAdvisory Severity = "advisory"
	SeverityTest     Severity = "test"
	SeverityUnknown  Severity = "unknown"
)

// The four code sets are disjoint: every product code classifies into at
// most one tier. Codes follow the agency's three-letter product identifiers
// (TOR tornado warning, SVA severe thunderstorm watch, and so on).
var (
	warningCodes = codeSet("TOR", "SVR", "FFW", "FLW", "EWW", "SMW",
		"HUW", "TYW", "TSW", "BZW", "WSW", "HWW", "DSW", "SQW", "CFW")

	watchCodes = codeSet("TOA", "SVA", "FFA", "FLA", "HUA", "TYA",
		"TSA", "WSA", "HWA", "CFA")

	advisoryCodes = codeSet("SPS", "SVS", "FLS", "MWS", "HLS")

	testCodes = codeSet("RWT", "RMT", "DMO", "NPT")
)

func codeSet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// Classify maps an alert type code to its severity tier. Codes outside all
// four sets classify as SeverityUnknown; callers reject those as client
// errors before any dispatch.
func Classify(typeCode string) Severity {
	switch {
	case member(warningCodes, typeCode):
		return SeverityWarning
	case member(watchCodes, typeCode):
		return SeverityWatch
	case member(advisoryCodes, typeCode):
		return SeverityAdvisory
	case member(testCodes, typeCode):
		return SeverityTest
	default:
		return SeverityUnknown
	}
}

func member(set map[string]struct{}, code string) bool {
	_, ok := set[code]
	return ok
}
