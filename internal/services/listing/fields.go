// Package listing turns the plain text of a real-estate listing document into
// a flat set of named fields (price, square footage, address, ...).
//
// The engine is a fixed sequence of independent rules. Each rule owns one
// field and an ordered list of regular expressions; the first pattern that
// matches anywhere in the text wins and later patterns are never consulted.
// A coarse residential-vs-commercial classification decides which rules run.
package listing

// Fields maps a field name (see the Field* constants) to its normalized value.
// A field is present only when one of its patterns matched.
type Fields map[string]string

// Field names as they appear in API responses and export headers.
const (
	FieldPrice         = "Price"
	FieldSqFt          = "Sq Ft"
	FieldBedrooms      = "Bedrooms"
	FieldBathrooms     = "Bathrooms"
	FieldMLS           = "MLS#"
	FieldAddress       = "Address"
	FieldLotSize       = "Lot Size"
	FieldTaxes         = "Taxes"
	FieldHOA           = "HOA"
	FieldZoning        = "Zoning"
	FieldCapRate       = "Cap Rate"
	FieldNOI           = "NOI"
	FieldUnits         = "Units"
	FieldFloors        = "Floors"
	FieldParking       = "Parking"
	FieldCeilingHeight = "Ceiling Height"
	FieldLoadingDocks  = "Loading Docks"
	FieldRenovated     = "Renovated"
	FieldGarage        = "Garage"
	FieldPool          = "Pool"
	FieldBasement      = "Basement"
	FieldContactEmail  = "Contact Email"
	FieldContactPhone  = "Contact Phone"
	FieldAgent         = "Agent"
	FieldBuilt         = "Built"
	FieldPropertyType  = "Property Type"
)

// FieldOrder is the display order used by spreadsheet and report exports.
var FieldOrder = []string{
	FieldAddress,
	FieldPropertyType,
	FieldPrice,
	FieldSqFt,
	FieldBedrooms,
	FieldBathrooms,
	FieldMLS,
	FieldLotSize,
	FieldBuilt,
	FieldRenovated,
	FieldTaxes,
	FieldHOA,
	FieldZoning,
	FieldCapRate,
	FieldNOI,
	FieldUnits,
	FieldFloors,
	FieldParking,
	FieldCeilingHeight,
	FieldLoadingDocks,
	FieldGarage,
	FieldPool,
	FieldBasement,
	FieldAgent,
	FieldContactEmail,
	FieldContactPhone,
}

// Ordered returns the present fields as name/value pairs in FieldOrder.
func (f Fields) Ordered() [][2]string {
	out := make([][2]string, 0, len(f))
	for _, name := range FieldOrder {
		if v, ok := f[name]; ok {
			out = append(out, [2]string{name, v})
		}
	}
	return out
}
