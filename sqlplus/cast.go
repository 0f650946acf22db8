package sqlplus

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the whole-second part of the default Oracle TIMESTAMP
// rendering (NLS_TIMESTAMP_FORMAT 'DD/MM/RR HH24:MI:SSXFF').
const TimestampLayout = "02/01/06 15:04:05"

// rrPivot is the first two-digit year Oracle's RR format places in the
// previous century: 00-49 are 20xx, 50-99 are 19xx. Go's "06" pivots at 69.
const rrPivot = 50

// CastRule pairs a recognition pattern with a converter. Patterns are
// anchored: they must match the whole cell text.
type CastRule struct {
	Name    string
	Pattern *regexp.Regexp
	// Convert may return an error when the text matched the pattern but cannot
	// be represented (e.g. integer overflow); the rule is then skipped.
	Convert func(text string) (any, error)
}

var (
	integerPattern   = regexp.MustCompile(`^-?\d+$`)
	floatPattern     = regexp.MustCompile(`^-?(\d+,?\d*|,\d+)([Ee][+-]?\d+)?$`)
	timestampPattern = regexp.MustCompile(`^\d\d/\d\d/\d\d \d\d:\d\d:\d\d,\d+$`)
	nullPattern      = regexp.MustCompile(`^NULL$`)
)

// DefaultCastRules returns the ordered rules used when casting is enabled.
// Integer must stay ahead of float: every integer literal also matches the
// float pattern.
func DefaultCastRules() []CastRule {
	return []CastRule{
		{Name: "integer", Pattern: integerPattern, Convert: castInteger},
		{Name: "float", Pattern: floatPattern, Convert: castFloat},
		{Name: "timestamp", Pattern: timestampPattern, Convert: castTimestamp},
		{Name: "null", Pattern: nullPattern, Convert: castNull},
	}
}

var defaultRules = DefaultCastRules()

// Cast converts cell text to int64, float64, time.Time, nil or, when no rule
// matches, returns the text unchanged. It never fails.
func Cast(text string) any {
	return CastWith(defaultRules, text)
}

// CastWith applies rules in order and returns the first successful conversion.
func CastWith(rules []CastRule, text string) any {
	for _, rule := range rules {
		if !rule.Pattern.MatchString(text) {
			continue
		}
		value, err := rule.Convert(text)
		if err != nil {
			continue
		}
		return value
	}
	return text
}

func castInteger(text string) (any, error) {
	return strconv.ParseInt(text, 10, 64)
}

func castFloat(text string) (any, error) {
	return strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
}

func castTimestamp(text string) (any, error) {
	// Fractional seconds are truncated, not rounded.
	t, err := time.Parse(TimestampLayout, text[:len(TimestampLayout)])
	if err != nil {
		return nil, err
	}
	if t.Year() >= 2000+rrPivot {
		t = t.AddDate(-100, 0, 0)
	}
	return t, nil
}

func castNull(string) (any, error) {
	return nil, nil
}
