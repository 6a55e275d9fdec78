package classify

// defaultQualifierWords are business/legal qualifier tokens. Matched by
// exact token after per-word punctuation stripping, never by substring.
var defaultQualifierWords = []string{
	"LLC", "INC", "CORP", "CORPORATION", "CO", "COMPANY", "LTD",
	"LP", "LLP", "PARTNERS", "PARTNERSHIP",
	"TRUST", "TRUSTEE", "TRUSTEES", "ESTATE",
	"ASSOC", "ASSOCIATION", "ASSOCIATES", "FOUNDATION",
	"CHURCH", "CEMETERY", "CLUB", "SOCIETY",
	"TOWN", "CITY", "COUNTY", "STATE",
	"REALTY", "PROPERTIES", "HOLDINGS", "BANK", "FUND",
}

// legalConstructWords is the subset of qualifiers that classify as a
// legal construct (fiduciary/estate vehicles) rather than a business.
var legalConstructWords = []string{
	"TRUST", "TRUSTEE", "TRUSTEES", "ESTATE",
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
