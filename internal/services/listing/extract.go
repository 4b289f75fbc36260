package listing

import (
	"regexp"
	"strings"
)

// commercialKeywords flag a document as commercial/industrial. The test is a
// plain substring match on the lowercased text, so "sf" also fires inside
// longer words. Keep it coarse: the classification only gates a few rules.
var commercialKeywords = []string{
	"industrial", "commercial", "office", "warehouse", "retail", "lease", "sf", "square feet",
}

// amount is a dollar figure: a digit, then digits and thousands separators,
// then optional cents.
const amount = `(\d[\d,]*(?:\.\d{2})?)`

// streetSuffix lists the street-type words an address must end with.
const streetSuffix = `(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Boulevard|Blvd|Way|Circle|Cir|Court|Ct|Place|Pl|Blvd|Pkwy|Parkway)`

var whitespaceRun = regexp.MustCompile(`\s+`)

// rule extracts a single field. Patterns are tried in order and only the
// first one that matches is used.
type rule struct {
	field    string
	patterns []*regexp.Regexp
	// format turns the winning submatch slice into the stored value.
	// Nil means "capture group 1, or the whole match if there is no group".
	format func(m []string) string
}

// ci compiles a case-insensitive pattern.
func ci(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

func group(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

func dollars(m []string) string { return "$" + group(m) }

func trimmed(m []string) string { return strings.TrimSpace(group(m)) }

func noCommas(m []string) string { return strings.ReplaceAll(group(m), ",", "") }

var priceRule = rule{
	field: FieldPrice,
	patterns: []*regexp.Regexp{
		ci(`\$` + amount),
		ci(`Price:\s*\$?` + amount),
		ci(`Asking:\s*\$?` + amount),
		ci(`Listed\s*at:\s*\$?` + amount),
		ci(`Value:\s*\$?` + amount),
		ci(`Cost:\s*\$?` + amount),
		ci(`Rent[:\s]*\$?` + amount),
		ci(`Rate[:\s]*\$?` + amount),
	},
	format: dollars,
}

var sqftRule = rule{
	field: FieldSqFt,
	patterns: []*regexp.Regexp{
		ci(`(\d{1,3}(?:,\d{3})*)\s*(?:sq\.?\s*ft\.?|square\s*feet)`),
		ci(`(\d{1,3}(?:,\d{3})*)\s*SF`),
		ci(`(\d{1,3}(?:,\d{3})*)\s*sqft`),
		ci(`(\d{1,3}(?:,\d{3})*)\s*sq\.?\s*ft`),
		ci(`Size:\s*(\d{1,3}(?:,\d{3})*)\s*(?:sq\.?\s*ft\.?|square\s*feet|SF)`),
		ci(`Area:\s*(\d{1,3}(?:,\d{3})*)\s*(?:sq\.?\s*ft\.?|square\s*feet|SF)`),
		ci(`Total\s*building\s*area:\s*(\d{1,3}(?:,\d{3})*)`),
		ci(`Building\s*area:\s*(\d{1,3}(?:,\d{3})*)`),
		ci(`(\d{1,3}(?:,\d{3})*)\s*SF\s*Industrial`),
		ci(`(\d{1,3}(?:,\d{3})*)\s*SF\s*Space`),
	},
	format: noCommas,
}

// residentialRules only run when the document is not classified commercial.
var residentialRules = []rule{
	{
		field: FieldBedrooms,
		patterns: []*regexp.Regexp{
			ci(`(\d+)\s*(?:bed|bedroom|br|beds)`),
			ci(`Bedrooms?:\s*(\d+)`),
			ci(`(\d+)\s*bedroom`),
			ci(`(\d+)\s*br`),
		},
	},
	{
		field: FieldBathrooms,
		patterns: []*regexp.Regexp{
			ci(`(\d+(?:\.\d+)?)\s*(?:bath|bathroom|ba|baths)`),
			ci(`Bathrooms?:\s*(\d+(?:\.\d+)?)`),
			ci(`(\d+(?:\.\d+)?)\s*bathroom`),
			ci(`(\d+(?:\.\d+)?)\s*ba`),
		},
	},
}

// commonRules run for every document, after price, size and the
// residential rules.
var commonRules = []rule{
	{
		field: FieldMLS,
		patterns: []*regexp.Regexp{
			ci(`MLS[#\s]*(\d+)`),
			ci(`MLS\s*ID[:\s]*(\d+)`),
			ci(`Listing\s*ID[:\s]*(\d+)`),
			ci(`MLS\s*Number[:\s]*(\d+)`),
			ci(`MLS#\s*(\d+)`),
			ci(`Listing\s*Number[:\s]*(\d+)`),
		},
	},
	{
		field: FieldAddress,
		patterns: []*regexp.Regexp{
			ci(`(\d+\s+[A-Za-z\s]+` + streetSuffix + `)`),
			ci(`Address[:\s]*([^\n]+)`),
			ci(`Property[:\s]*([^\n]+)`),
			ci(`Location[:\s]*([^\n]+)`),
			// Text extraction sometimes drops the space after the house number.
			ci(`(\d{2,}[A-Za-z\s]+` + streetSuffix + `[^,\n]*(?:,\s*[A-Za-z\s]+,\s*[A-Z]{2}\s*\d{5})?)`),
		},
		format: func(m []string) string {
			return whitespaceRun.ReplaceAllString(strings.TrimSpace(group(m)), " ")
		},
	},
	{
		field: FieldLotSize,
		patterns: []*regexp.Regexp{
			ci(`Lot\s*Size[:\s]*(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*(?:sq\.?\s*ft\.?|square\s*feet|SF)`),
			// The unit must not run into another word ("2 acresX" is not a lot size).
			ci(`Lot\s*Size[:\s]*(\d+(?:\.\d+)?)\s*(?:acres?|ac\.?)(?:\W|$)`),
			ci(`Land\s*Area[:\s]*(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*(?:sq\.?\s*ft\.?|SF)`),
			ci(`Lot[:\s]*(\d+(?:\.\d+)?)\s*ac(?:re)?s?`),
		},
		format: func(m []string) string {
			if strings.Contains(strings.ToLower(m[0]), "ac") {
				return m[1] + " acres"
			}
			return m[1] + " sqft"
		},
	},
	{
		field: FieldTaxes,
		patterns: []*regexp.Regexp{
			ci(`Taxes?[:\s]*\$?` + amount),
			ci(`Property\s*Tax(?:es)?[:\s]*\$?` + amount),
		},
		format: dollars,
	},
	{
		field: FieldHOA,
		patterns: []*regexp.Regexp{
			ci(`HOA\s*(?:Fees?|Dues?)[:\s]*\$?` + amount + `\s*(?:/\s*(month|mo|year|yr|quarter|qtr))?`),
			ci(`Association\s*Fee[:\s]*\$?` + amount + `\s*(?:/\s*(month|mo|year|yr|quarter|qtr))?`),
		},
		format: func(m []string) string {
			fee := "$" + m[1]
			if m[2] == "" {
				return fee
			}
			return fee + " / " + m[2]
		},
	},
	{
		field: FieldZoning,
		patterns: []*regexp.Regexp{
			ci(`Zoning[:\s]*([A-Za-z0-9\-]+)`),
			ci(`Zone[:\s]*([A-Za-z0-9\-]+)`),
		},
	},
	{
		field: FieldCapRate,
		patterns: []*regexp.Regexp{
			ci(`Cap\s*Rate[:\s]*([\d\.]+)\s*%`),
			ci(`Capitalization\s*Rate[:\s]*([\d\.]+)\s*%`),
		},
		format: func(m []string) string { return m[1] + "%" },
	},
	{
		field: FieldNOI,
		patterns: []*regexp.Regexp{
			ci(`NOI[:\s]*\$?` + amount),
			ci(`Net\s*Operating\s*Income[:\s]*\$?` + amount),
		},
		format: dollars,
	},
	{
		field: FieldUnits,
		patterns: []*regexp.Regexp{
			ci(`Units?[:\s]*(\d[\d,]*)`),
			ci(`(\d[\d,]*)\s*units?\b`),
		},
		format: noCommas,
	},
	{
		field: FieldFloors,
		patterns: []*regexp.Regexp{
			ci(`Floors?[:\s]*(\d+)`),
			ci(`Stories?[:\s]*(\d+)`),
		},
	},
	{
		field: FieldParking,
		patterns: []*regexp.Regexp{
			ci(`Parking[:\s]*([A-Za-z0-9\s\-\+]+)`),
			ci(`(\d+)\s*parking\s*(?:spaces|spots)`),
		},
		format: trimmed,
	},
	{
		field:    FieldCeilingHeight,
		patterns: []*regexp.Regexp{ci(`Ceiling\s*Height[:\s]*([\d\.]+)\s*(?:ft|feet)`)},
		format:   func(m []string) string { return m[1] + " ft" },
	},
	{
		field:    FieldLoadingDocks,
		patterns: []*regexp.Regexp{ci(`Loading\s*Docks?[:\s]*(\d+)`)},
	},
	{
		field: FieldRenovated,
		patterns: []*regexp.Regexp{
			ci(`Renovated[:\s]*(\d{4})`),
			ci(`Updated[:\s]*(\d{4})`),
		},
	},
	flagRule(FieldGarage, `\bgarage\b`),
	flagRule(FieldPool, `\bpool\b`),
	flagRule(FieldBasement, `\bbasement\b`),
	{
		field:    FieldContactEmail,
		patterns: []*regexp.Regexp{regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	},
	{
		field:    FieldContactPhone,
		patterns: []*regexp.Regexp{regexp.MustCompile(`(?:\+?1[\s\-\.]*)?\(?\d{3}\)?[\s\-\.]?\d{3}[\s\-\.]?\d{4}`)},
	},
	{
		field: FieldAgent,
		patterns: []*regexp.Regexp{
			ci(`Agent[:\s]*([A-Za-z\s\.-]+)`),
			ci(`Broker[:\s]*([A-Za-z\s\.-]+)`),
		},
		format: trimmed,
	},
	{
		field: FieldBuilt,
		patterns: []*regexp.Regexp{
			ci(`Built[:\s]*(\d{4})`),
			ci(`Year\s*Built[:\s]*(\d{4})`),
			ci(`Constructed[:\s]*(\d{4})`),
			ci(`(\d{4})\s*built`),
			ci(`Built\s*in[:\s]*(\d{4})`),
		},
	},
}

// flagRule records "Yes" when the word appears anywhere in the text.
func flagRule(field, pattern string) rule {
	return rule{
		field:    field,
		patterns: []*regexp.Regexp{ci(pattern)},
		format:   func([]string) string { return "Yes" },
	}
}

// apply runs the rule against text and stores the value on a hit.
func (r rule) apply(text string, out Fields) {
	for _, p := range r.patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if r.format != nil {
			out[r.field] = r.format(m)
		} else {
			out[r.field] = group(m)
		}
		return
	}
}

// IsCommercial reports whether text reads like a commercial or industrial
// listing rather than a residential one.
func IsCommercial(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range commercialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// PropertyType picks the commercial sub-type named in the text. The checks
// run in a fixed order, so a document mentioning both "office" and
// "industrial" is Industrial.
func PropertyType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "industrial"):
		return "Industrial"
	case strings.Contains(lower, "office"):
		return "Office"
	case strings.Contains(lower, "retail"):
		return "Retail"
	case strings.Contains(lower, "warehouse"):
		return "Warehouse"
	default:
		return "Commercial"
	}
}

// Extract runs every rule over text and returns the fields that matched.
// It never fails: text with no recognizable content yields an empty map.
func Extract(text string) Fields {
	out := Fields{}
	commercial := IsCommercial(text)

	priceRule.apply(text, out)
	sqftRule.apply(text, out)

	if !commercial {
		for _, r := range residentialRules {
			r.apply(text, out)
		}
	}

	for _, r := range commonRules {
		r.apply(text, out)
	}

	if commercial {
		out[FieldPropertyType] = PropertyType(text)
	}
	return out
}
