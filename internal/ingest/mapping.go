package ingest

import (
	"fmt"
	"strings"
)

// normalizeHeader lowers the header and folds underscores and repeated
// whitespace into single spaces, so "Posted_Date" and " posted  date "
// compare equal.
func normalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(header, "_", " "))), " ")
}

// SuggestMapping proposes a schema-field to CSV-header mapping. An alias
// matches a header when the normalized forms are equal or when the alias
// appears as a whole-word substring of the header ("transaction date" matches
// "Transaction Date GMT"). The first alias that matches wins per field;
// unmatched fields are simply absent from the result.
func SuggestMapping(headers []string) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}

	normalized := make(map[string]string, len(headers))
	var order []string
	for _, header := range headers {
		n := normalizeHeader(header)
		if _, seen := normalized[n]; !seen {
			normalized[n] = header
			order = append(order, n)
		}
	}

	mapping := make(map[string]string)
	fields := append(append([]string{}, RequiredFields...), OptionalFields...)
	for _, field := range fields {
		for _, alias := range headerAliases[field] {
			for _, n := range order {
				if alias == n || strings.Contains(" "+n+" ", " "+alias+" ") {
					mapping[field] = normalized[n]
					break
				}
			}
			if _, ok := mapping[field]; ok {
				break
			}
		}
	}
	return mapping
}

// ValidateMapping checks that every required field resolved to a column.
func ValidateMapping(mapping map[string]string) error {
	var missing []string
	for _, field := range RequiredFields {
		if mapping[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("could not map required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
