package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shopmart/internal/domain"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
)

// ParseSortKey maps unknown values to SortNone.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return k
	}
	return SortNone
}

// FilterByCategory returns all products when category is empty.
func FilterByCategory(products []domain.Product, category string) []domain.Product {
	if category == "" {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// FilterByPrice keeps products with lo <= price <= hi.
func FilterByPrice(products []domain.Product, lo, hi decimal.Decimal) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Price.GreaterThanOrEqual(lo) && p.Price.LessThanOrEqual(hi) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a sorted copy; the input is left alone.
func Sort(products []domain.Product, key SortKey) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	var less func(a, b domain.Product) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b domain.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortNameAsc:
		less = func(a, b domain.Product) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortNameDesc:
		less = func(a, b domain.Product) bool { return strings.ToLower(a.Title) > strings.ToLower(b.Title) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Featured picks the n best rated products.
func Featured(products []domain.Product, n int) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating.Rate > out[j].Rating.Rate })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Lookup finds a product in an already loaded list.
func Lookup(products []domain.Product, id int) (domain.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// CategoryLabel turns "men's clothing" into "Men's Clothing".
func CategoryLabel(category string) string {
	// Casers are stateful, so one per call.
	return cases.Title(language.English).String(category)
}
