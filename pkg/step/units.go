package step

import (
	"regexp"
	"strings"
)

// Unit is the declared length unit of a STEP file and its scale
// relative to millimetres (value_in_unit = value_in_mm * Scale).
type Unit struct {
	Name  string  `json:"length_unit"`
	Scale float64 `json:"length_scale"`
}

// DefaultUnit is used when the file declares no recognisable length unit
var DefaultUnit = Unit{Name: "mm", Scale: 1.0}

var (
	conversionUnitRegex  = regexp.MustCompile(`CONVERSION_BASED_UNIT\s*\(\s*'(\w+)'`)
	siPrefixedMetreRegex = regexp.MustCompile(`SI_UNIT\s*\(\s*\.(\w+)\.\s*,\s*\.METRE\.\s*\)`)
	siMetreRegex         = regexp.MustCompile(`SI_UNIT\s*\(\s*\$\s*,\s*\.METRE\.\s*\)`)
)

var unitScales = map[string]float64{
	"mm": 1.0,
	"cm": 0.1,
	"dm": 0.01,
	"m":  0.001,
	"km": 0.000001,
	"in": 1.0 / 25.4,
	"ft": 1.0 / 304.8,
	"yd": 1.0 / 914.4,
	"mi": 1.0 / 1609344.0,
}

// imperialUnits maps conversion-based unit names to unit symbols
var imperialUnits = map[string]string{
	"INCH":   "in",
	"INCHES": "in",
	"FOOT":   "ft",
	"FEET":   "ft",
	"YARD":   "yd",
	"YARDS":  "yd",
	"MILE":   "mi",
	"MILES":  "mi",
}

// angleUnits are conversion-based units that never describe length
var angleUnits = map[string]bool{
	"DEGREE":  true,
	"DEGREES": true,
	"RADIAN":  true,
	"RADIANS": true,
	"GRAD":    true,
	"GRADIAN": true,
}

var metricPrefixes = map[string]string{
	"MILLI": "mm",
	"CENTI": "cm",
	"DECI":  "dm",
	"KILO":  "km",
}

// ResolveUnit determines the length unit declared in STEP text.
// The first matching rule wins:
//  1. a conversion-based length unit (INCH, FOOT, YARD, MILE, ...)
//  2. an SI metre with a prefix (MILLI, CENTI, DECI, KILO)
//  3. an SI metre without a prefix
//  4. millimetres
//
// It never fails.
func ResolveUnit(text string) Unit {
	content := strings.ToUpper(text)

	for _, m := range conversionUnitRegex.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if angleUnits[name] {
			continue
		}
		if symbol, ok := imperialUnits[name]; ok {
			return Unit{Name: symbol, Scale: unitScales[symbol]}
		}
		return Unit{Name: strings.ToLower(name), Scale: 1.0}
	}

	if m := siPrefixedMetreRegex.FindStringSubmatch(content); m != nil {
		symbol, ok := metricPrefixes[m[1]]
		if !ok {
			symbol = "m"
		}
		return Unit{Name: symbol, Scale: unitScales[symbol]}
	}

	if siMetreRegex.MatchString(content) {
		return Unit{Name: "m", Scale: unitScales["m"]}
	}

	return DefaultUnit
}
