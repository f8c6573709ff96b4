package domain

import "strings"

type Category string

const (
	CategoryGroceries     Category = "GROCERIES"
	CategoryUtilities     Category = "UTILITIES"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryTransport     Category = "TRANSPORT"
	CategoryTravel        Category = "TRAVEL"
	CategoryDining        Category = "DINING"
	CategoryShopping      Category = "SHOPPING"
	CategoryHealthcare    Category = "HEALTHCARE"
	CategoryEducation     Category = "EDUCATION"
	CategoryInsurance     Category = "INSURANCE"
	CategoryRent          Category = "RENT"
	CategoryMortgage      Category = "MORTGAGE"
	CategorySalary        Category = "SALARY"
	CategoryInvestment    Category = "INVESTMENT"
	CategoryTransfer      Category = "TRANSFER"
	CategoryFees          Category = "FEES"
	CategorySubscriptions Category = "SUBSCRIPTIONS"
	CategoryUnknown       Category = "UNKNOWN"
)

var AllCategories = []Category{
	CategoryGroceries,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryTransport,
	CategoryTravel,
	CategoryDining,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEducation,
	CategoryInsurance,
	CategoryRent,
	CategoryMortgage,
	CategorySalary,
	CategoryInvestment,
	CategoryTransfer,
	CategoryFees,
	CategorySubscriptions,
	CategoryUnknown,
}

// ParseCategory normalizes s to a known category. Unrecognized values map to
// CategoryUnknown with ok=false.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllCategories {
		if c == known {
			return known, true
		}
	}
	return CategoryUnknown, false
}
