package model

// Category labels used by the built-in rules. Source files may carry others.
const (
	CategoryGroceries     = "groceries"
	CategoryDining        = "dining"
	CategoryUtilities     = "utilities"
	CategoryRent          = "rent"
	CategoryEntertainment = "entertainment"
	CategorySubscription  = "subscription"
	CategoryTransport     = "transport"
	CategoryShopping      = "shopping"
	CategoryHealth        = "health"
	CategoryTravel        = "travel"
	CategoryIncome        = "income"
	CategoryTransfer      = "transfer"
	CategoryOther         = "other"
)

// Taxonomy returns the built-in category labels in display order.
func Taxonomy() []string {
	return []string{
		CategoryGroceries,
		CategoryDining,
		CategoryUtilities,
		CategoryRent,
		CategoryEntertainment,
		CategorySubscription,
		CategoryTransport,
		CategoryShopping,
		CategoryHealth,
		CategoryTravel,
		CategoryIncome,
		CategoryTransfer,
		CategoryOther,
	}
}
