// Package category normalizes maintenance category labels between the three
// representations the surrounding systems use: the display name the classifier
// emits, the name the vendor/ranking APIs accept, and the name stored in the
// Categories table.
package category

import "strings"

type entry struct {
	Display string
	API     string
	SQL     string
}

// One row per category whose three representations differ. Labels not listed
// here are identical in all three systems and pass through unchanged.
var table = []entry{
	{
		Display: "Pool/Hot Tub",
		API:     "Pool Hot Tub",
		SQL:     "Pool/Hot Tub Installer /Repair",
	},
	{
		Display: "Appliance Installer / Repair",
		API:     "Appliance Installer Repair",
		SQL:     "Appliance Installer / Repair",
	},
	{
		Display: "Garage Door Installer / Repair",
		API:     "Garage Door Installer Repair",
		SQL:     "Garage Door Installer / Repair",
	},
}

var (
	byDisplay = map[string]entry{}
	byAPI     = map[string]entry{}
	bySQL     = map[string]entry{}
)

func init() {
	for _, e := range table {
		byDisplay[e.Display] = e
		byAPI[e.API] = e
		bySQL[e.SQL] = e
	}
}

func lookup(label string) (entry, bool) {
	if e, ok := byDisplay[label]; ok {
		return e, true
	}
	if e, ok := byAPI[label]; ok {
		return e, true
	}
	if e, ok := bySQL[label]; ok {
		return e, true
	}
	return entry{}, false
}

// normalize undoes URL-style space encoding before table lookup.
func normalize(label string) string {
	return strings.ReplaceAll(label, "%20", " ")
}

// ToAPI maps a label in any representation to the API form.
func ToAPI(label string) string {
	label = normalize(label)
	if e, ok := lookup(label); ok {
		return e.API
	}
	return label
}

// ToSQL maps a label in any representation to the Categories-table form.
func ToSQL(label string) string {
	label = normalize(label)
	if e, ok := lookup(label); ok {
		return e.SQL
	}
	return label
}

// ToDisplay maps a label in any representation to the display form.
func ToDisplay(label string) string {
	label = normalize(label)
	if e, ok := lookup(label); ok {
		return e.Display
	}
	return label
}
