package analytics

import "fmt"

// ReturnPolicy is the return window class for a department.
type ReturnPolicy string

const (
	// PolicyStandard items can be returned anytime.
	PolicyStandard ReturnPolicy = "standard"
	// Policy90Day items must come back within 90 days of purchase.
	Policy90Day ReturnPolicy = "90-day"
)

// departmentLabels maps warehouse department codes to display labels.
// Codes not present here render as a synthetic "Department <code>" label.
var departmentLabels = map[string]string{
	"11": "Deli",
	"13": "Produce",
	"14": "Meat & Seafood",
	"19": "Electronics",
	"21": "Appliances",
	"23": "Jewelry & Watches",
	"29": "Pharmacy",
	"31": "Grocery",
	"33": "Snacks & Candy",
	"37": "Health & Beauty",
	"41": "Clothing",
	"47": "Hardware & Auto",
	"53": "Office & Books",
	"59": "Seasonal",
	"62": "Furniture & Mattresses",
	"71": "Sporting Goods",
	"83": "Household",
	"96": "Liquor",
}

type policyEntry struct {
	Label  string
	Policy ReturnPolicy
}

// returnPolicies lists the departments that accept returns at all.
// Departments absent from this table are never return-eligible, whatever the
// purchase history looks like.
var returnPolicies = map[string]policyEntry{
	"11": {Label: "Deli", Policy: PolicyStandard},
	"13": {Label: "Produce", Policy: PolicyStandard},
	"14": {Label: "Meat & Seafood", Policy: PolicyStandard},
	"19": {Label: "Electronics", Policy: Policy90Day},
	"21": {Label: "Appliances", Policy: Policy90Day},
	"23": {Label: "Jewelry & Watches", Policy: Policy90Day},
	"31": {Label: "Grocery", Policy: PolicyStandard},
	"33": {Label: "Snacks & Candy", Policy: PolicyStandard},
	"37": {Label: "Health & Beauty", Policy: PolicyStandard},
	"41": {Label: "Clothing", Policy: PolicyStandard},
	"47": {Label: "Hardware & Auto", Policy: PolicyStandard},
	"62": {Label: "Furniture & Mattresses", Policy: Policy90Day},
	"71": {Label: "Sporting Goods", Policy: PolicyStandard},
	"83": {Label: "Household", Policy: PolicyStandard},
}

func departmentLabel(code string) string {
	if label, ok := departmentLabels[code]; ok {
		return label
	}
	return fmt.Sprintf("Department %s", code)
}
