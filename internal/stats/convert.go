package stats

// convert.go turns raw CSV text into numbers. It tolerates the messy values
// spreadsheet exports produce: currency symbols, thousands separators,
// accounting negatives "(123.45)" and Excel's ="..." wrapper.

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex matches integers, decimals and scientific notation after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// missingMarkers are the spellings treated as a missing value, besides "".
var missingMarkers = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
}

// IsMissing reports whether a field holds no value.
func IsMissing(field string) bool {
	s := strings.TrimSpace(field)
	if s == "" {
		return true
	}
	_, ok := missingMarkers[s]
	return ok
}

// ParseNumber converts a field to float64. ok is false for empty or non-numeric input.
func ParseNumber(field string) (v float64, ok bool) {
	s := cleanCell(field)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // euro
	s = strings.ReplaceAll(s, "£", "") // pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// cleanCell strips surrounding whitespace and the ="value" wrapper Excel uses
// to keep leading zeros.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
