package pricing

type MatchType string

// TermMatch is the only match type supported by the catalog; the field
// must equal the value exactly.
const TermMatch MatchType = "TERM_MATCH"

// Filter restricts the products returned by the catalog to those
// whose attribute 'Field' matches 'Value'.
type Filter struct {
	Field string    `json:"field"`
	Type  MatchType `json:"type"`
	Value string    `json:"value"`
}

func TermFilter(field string, value string) Filter {
	return Filter{Field: field, Type: TermMatch, Value: value}
}

// mergeFilters prepends the mandatory service code filter to
// the filters provided by the caller.
func mergeFilters(serviceCode string, filters []Filter) []Filter {
	merged := make([]Filter, 0, len(filters)+1)
	merged = append(merged, TermFilter("servicecode", serviceCode))
	return append(merged, filters...)
}
