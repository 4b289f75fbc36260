// extract_test.go: Unit tests for the listing field heuristics.
package listing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

const residentialListing = `Charming Family Home
Address: 742 Evergreen Street, Springfield
Price: $450,000
3 bedrooms, 2.5 baths
2,100 sq ft
MLS# 5551234
Lot Size: 0.25 acres
Year Built: 1998
Taxes: $4,200
HOA Fees: $150 / month
Features: attached garage, finished basement
Email: jane.doe@realty.com
Phone: (555) 123-4567
Agent: Jane Doe`

const commercialListing = `FOR LEASE
Industrial Warehouse Space
1500 Commerce Parkway, Dallas, TX 75201
45,000 SF Industrial
Lease Rate: $8.50 / SF / year
Zoning: M-1
Ceiling Height: 32 ft
Loading Docks: 6
Cap Rate: 6.5%
NOI: $310,000
Year Built: 2005
Broker: John Smith
(214) 555-0199
Parking: 40 spaces`

func TestExtract_ResidentialListing(t *testing.T) {
	want := Fields{
		FieldPrice:        "$450,000",
		FieldSqFt:         "2100",
		FieldBedrooms:     "3",
		FieldBathrooms:    "2.5",
		FieldMLS:          "5551234",
		FieldAddress:      "742 Evergreen Street",
		FieldLotSize:      "0.25 acres",
		FieldTaxes:        "$4,200",
		FieldHOA:          "$150 / month",
		FieldGarage:       "Yes",
		FieldBasement:     "Yes",
		FieldContactEmail: "jane.doe@realty.com",
		FieldContactPhone: "(555) 123-4567",
		FieldAgent:        "Jane Doe",
		FieldBuilt:        "1998",
	}

	got := Extract(residentialListing)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract(residential) mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_CommercialListing(t *testing.T) {
	want := Fields{
		FieldPrice:         "$8.50",
		FieldSqFt:          "45000",
		FieldAddress:       "1500 Commerce Parkway",
		FieldZoning:        "M-1",
		FieldCapRate:       "6.5%",
		FieldNOI:           "$310,000",
		FieldParking:       "40 spaces",
		FieldCeilingHeight: "32 ft",
		FieldLoadingDocks:  "6",
		FieldContactPhone:  "(214) 555-0199",
		FieldAgent:         "John Smith",
		FieldBuilt:         "2005",
		FieldPropertyType:  "Industrial",
	}

	got := Extract(commercialListing)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract(commercial) mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_SingleFields(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
		want  string
	}{
		{"price without dollar sign", "Asking: 325,000", FieldPrice, "$325,000"},
		{"price with cents", "Listed at: $1,250.99", FieldPrice, "$1,250.99"},
		{"lot size in square feet", "Lot Size: 7,500 sq ft", FieldLotSize, "7,500 sqft"},
		{"lot abbreviated acres", "Lot: 3 ac", FieldLotSize, "3 acres"},
		{"hoa without frequency", "HOA Dues: $200", FieldHOA, "$200"},
		{"association fee yearly", "Association Fee: $1,800 / year", FieldHOA, "$1,800 / year"},
		{"units strip commas", "Units: 1,200", FieldUnits, "1200"},
		{"units trailing word", "a 24 unit building", FieldUnits, "24"},
		{"floors", "Floors: 3", FieldFloors, "3"},
		{"stories", "Stories: 2", FieldFloors, "2"},
		{"renovated", "Renovated: 2019", FieldRenovated, "2019"},
		{"updated", "Kitchen Updated 2021", FieldRenovated, "2021"},
		{"built in", "built 1987 by owner", FieldBuilt, "1987"},
		{"mls id", "MLS ID: 998877", FieldMLS, "998877"},
		{"listing number", "Listing Number: 4242", FieldMLS, "4242"},
		{"address whitespace collapsed", "12   Oak  St", FieldAddress, "12 Oak St"},
		{"location line", "Location: Downtown corner lot", FieldAddress, "Downtown corner lot"},
		{"house number run into street", "12Main St near park", FieldAddress, "12Main St near park"},
		{"run-in address with city", "1500Commerce Parkway, Dallas, TX 75201", FieldAddress, "1500Commerce Parkway, Dallas, TX 75201"},
		{"pool flag", "Backyard pool and spa", FieldPool, "Yes"},
		{"phone with country code", "Call +1 555.867.5309 today", FieldContactPhone, "+1 555.867.5309"},
		{"property tax", "Property Taxes: 3,100.50", FieldTaxes, "$3,100.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			assert.Equal(t, tt.want, got[tt.field], "fields: %v", got)
		})
	}
}

func TestExtract_FirstPatternWins(t *testing.T) {
	// A "$" figure anywhere beats an earlier labelled price without one.
	got := Extract("Price: 500,000 negotiable, deposit $10,000")
	assert.Equal(t, "$10,000", got[FieldPrice])
}

func TestExtract_LotAcresMustEndTheWord(t *testing.T) {
	got := Extract("Lot Size: 2 acresX")
	_, ok := got[FieldLotSize]
	assert.False(t, ok, "unexpected lot size %q", got[FieldLotSize])
}

func TestExtract_CommercialSkipsRoomCounts(t *testing.T) {
	got := Extract("Office building with 3 bedrooms and 2 baths")

	assert.NotContains(t, got, FieldBedrooms)
	assert.NotContains(t, got, FieldBathrooms)
	assert.Equal(t, "Office", got[FieldPropertyType])
}

func TestExtract_ResidentialHasNoPropertyType(t *testing.T) {
	got := Extract("Cozy 2 bedroom cottage")

	assert.Equal(t, "2", got[FieldBedrooms])
	assert.NotContains(t, got, FieldPropertyType)
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("nothing to see here"))
}

func TestIsCommercial(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Class A OFFICE space", true},
		{"Retail storefront", true},
		{"12,000 square feet", true},
		{"Available for lease", true},
		{"3 bed 2 bath ranch home", false},
		// Substring match: "sf" inside a longer word still counts.
		{"title transfer pending", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCommercial(tt.text))
		})
	}
}

func TestPropertyType(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"industrial park with office", "Industrial"},
		{"office and retail mix", "Office"},
		{"retail strip", "Retail"},
		{"warehouse for lease", "Warehouse"},
		{"commercial land", "Commercial"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, PropertyType(tt.text))
		})
	}
}

func TestFieldsOrdered(t *testing.T) {
	f := Fields{FieldBuilt: "1990", FieldPrice: "$1", FieldAddress: "1 Main St"}

	got := f.Ordered()
	want := [][2]string{
		{FieldAddress, "1 Main St"},
		{FieldPrice, "$1"},
		{FieldBuilt, "1990"},
	}
	assert.Equal(t, want, got)
}
