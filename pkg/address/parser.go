// Package address parses raw address strings into structured fields and
// resolves street names against the canonical street database.
package address

import (
	"regexp"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

var unitMarkers = map[string]bool{
	"APT":   true,
	"UNIT":  true,
	"STE":   true,
	"SUITE": true,
	"FL":    true,
	"FLOOR": true,
	"RM":    true,
	"#":     true,
}

var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true, "PR": true, "VI": true,
}

var (
	leadingNumberRe = regexp.MustCompile(`^(\d+[A-Z]?)(?:-\d+[A-Z]?)?$`)
	zipRe           = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)
	poBoxRe         = regexp.MustCompile(`^P\.?O\.?\s*BOX\s+(\S+)`)
)

// Parse extracts structured fields from a raw address string. It is
// positional: leading digits become the street number, a recognized
// street-type word ends the street name, unit markers introduce a unit,
// and a trailing zip/state/city tail fills the locality fields. Fragments
// that fit no slot are dropped rather than guessed; every output field is
// optional.
func Parse(raw, source string) *models.Address {
	addr := &models.Address{}
	upper := normalizers.CollapseWhitespace(strings.ToUpper(raw))
	if upper == "" {
		return addr
	}

	value := func(term, field string) *models.AttributedValue {
		return models.NewAttributedValue(term, source, 0, field)
	}

	// PO boxes carry no street geometry; keep the box number as the unit.
	if m := poBoxRe.FindStringSubmatch(upper); m != nil {
		addr.UnitType = value("PO BOX", "raw_address")
		addr.UnitNumber = value(strings.Trim(m[1], ",."), "raw_address")
		upper = strings.TrimSpace(upper[len(m[0]):])
	}

	words := splitWords(upper)
	words = consumeTail(addr, words, source)

	i := 0
	if i < len(words) {
		if m := leadingNumberRe.FindStringSubmatch(words[i]); m != nil {
			addr.StreetNumber = value(m[1], "raw_address")
			i++
		}
	}

	// Street name runs until a street-type word or unit marker.
	var nameWords []string
	for i < len(words) {
		w := words[i]
		if unitMarkers[w] || strings.HasPrefix(w, "#") {
			break
		}
		if abbr, ok := normalizers.StreetTypeAbbreviation(w); ok && len(nameWords) > 0 {
			addr.StreetType = value(abbr, "raw_address")
			i++
			break
		}
		nameWords = append(nameWords, w)
		i++
	}
	if len(nameWords) > 0 && addr.StreetName == nil {
		addr.StreetName = value(strings.Join(nameWords, " "), "raw_address")
	}

	// Unit designator after the street, e.g. "APT 4B" or "#12".
	if i < len(words) && addr.UnitNumber == nil {
		w := words[i]
		switch {
		case strings.HasPrefix(w, "#") && len(w) > 1:
			addr.UnitType = value("#", "raw_address")
			addr.UnitNumber = value(w[1:], "raw_address")
		case unitMarkers[w] && i+1 < len(words):
			addr.UnitType = value(w, "raw_address")
			addr.UnitNumber = value(strings.TrimPrefix(words[i+1], "#"), "raw_address")
		}
	}

	return addr
}

// consumeTail strips zip, state, and city off the end of the word list.
func consumeTail(addr *models.Address, words []string, source string) []string {
	value := func(term, field string) *models.AttributedValue {
		return models.NewAttributedValue(term, source, 0, field)
	}

	end := len(words)
	if end > 0 && zipRe.MatchString(words[end-1]) {
		addr.Zip = value(normalizers.NormalizeZip(words[end-1]), "raw_address")
		end--
	}
	if end > 0 && usStates[words[end-1]] {
		addr.State = value(words[end-1], "raw_address")
		end--

		// Whatever sits between the last street-type word and the state is
		// the city. Without a state anchor we cannot tell city words from
		// street words, so the city stays absent.
		cityStart := end
		for cityStart > 0 {
			w := words[cityStart-1]
			if _, ok := normalizers.StreetTypeAbbreviation(w); ok {
				break
			}
			if unitMarkers[w] || strings.HasPrefix(w, "#") || leadingNumberRe.MatchString(w) {
				break
			}
			cityStart--
		}
		if cityStart < end {
			addr.City = value(strings.Join(words[cityStart:end], " "), "raw_address")
			end = cityStart
		}
	}
	return words[:end]
}

func splitWords(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
