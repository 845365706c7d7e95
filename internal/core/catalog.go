package core

import "strings"

// Category is one entry of the static category catalog. The catalog is
// process-wide read-only configuration; there is no mutation API. ID doubles
// as the display name and is the natural key referenced by transactions and
// budgets.
type Category struct {
	ID            string
	Name          string
	Icon          string
	Tracking      Period
	Subcategories []string
}

var catalog = []Category{
	{ID: "Groceries", Name: "Groceries", Icon: "cart", Tracking: PeriodMonthly, Subcategories: []string{"Supermarket", "Snacks", "Household"}},
	{ID: "Eating Out", Name: "Eating Out", Icon: "fork.knife", Tracking: PeriodMonthly, Subcategories: []string{"Lunch", "Dinner", "Coffee"}},
	{ID: "Transport", Name: "Transport", Icon: "bus", Tracking: PeriodMonthly, Subcategories: []string{"Train", "Taxi", "Fuel"}},
	{ID: "Self Care", Name: "Self Care", Icon: "heart", Tracking: PeriodMonthly, Subcategories: []string{"Skincare", "Haircut", "Gym"}},
	{ID: "Shopping", Name: "Shopping", Icon: "bag", Tracking: PeriodYearly, Subcategories: []string{"Clothes", "Shoes", "Other"}},
	{ID: "Gifts", Name: "Gifts", Icon: "gift", Tracking: PeriodYearly, Subcategories: []string{"Birthday", "Occasion"}},
	{ID: "Trips", Name: "Trips", Icon: "airplane", Tracking: PeriodYearly, Subcategories: []string{"Flight", "Hotel", "Food"}},
	{ID: "Electronics", Name: "Electronics", Icon: "desktopcomputer", Tracking: PeriodYearly, Subcategories: []string{"Accessories", "Gadgets"}},
}

var catalogByID = func() map[string]Category {
	m := make(map[string]Category, len(catalog))
	for _, c := range catalog {
		m[c.ID] = c
	}
	return m
}()

// Catalog returns a copy of the full category catalog, in display order.
func Catalog() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// CategoryByID looks up a catalog entry by its id.
func CategoryByID(id string) (Category, bool) {
	c, ok := catalogByID[id]
	return c, ok
}

// CategoriesTracked returns the catalog entries budgeted at the given period
// granularity, in display order.
func CategoriesTracked(p Period) []Category {
	var out []Category
	for _, c := range catalog {
		if c.Tracking == p {
			out = append(out, c)
		}
	}
	return out
}

// ValidateCategory checks that the category exists and, when subcategory is
// non-empty, that it belongs to the category's allowed list. Enforced at
// write time only; stored rows are not revalidated if the catalog changes.
func ValidateCategory(categoryID, subcategory string) error {
	c, ok := catalogByID[categoryID]
	if !ok {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(subcategory) == "" {
		return nil
	}
	for _, s := range c.Subcategories {
		if s == subcategory {
			return nil
		}
	}
	return ErrInvalidCategory
}
