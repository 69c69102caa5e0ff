package rules

import (
	"fmt"

	"github.com/opensource-finance/retention/internal/domain"
)

// MaxPurchaseCount bounds each purchase channel so the derived total stays
// far from integer overflow.
const MaxPurchaseCount = 1000000

// DefaultConstraints returns the value constraints of every input field.
func DefaultConstraints() []Constraint {
	return []Constraint{
		{ID: "recency-min", Field: domain.FeatureRecency, Expression: "recency >= 0", Message: "recency must be at least 0"},
		{ID: "spending-min", Field: domain.FeatureTotalSpending, Expression: "total_spending >= 0.0", Message: "total spending must be at least 0"},
		{ID: "web-purchases-min", Field: domain.FeatureNumWebPurchases, Expression: "num_web_purchases >= 0", Message: "web purchases must be at least 0"},
		{ID: "web-purchases-max", Field: domain.FeatureNumWebPurchases, Expression: fmt.Sprintf("num_web_purchases <= %d", MaxPurchaseCount), Message: fmt.Sprintf("web purchases must be at most %d", MaxPurchaseCount)},
		{ID: "store-purchases-min", Field: domain.FeatureNumStorePurchases, Expression: "num_store_purchases >= 0", Message: "store purchases must be at least 0"},
		{ID: "store-purchases-max", Field: domain.FeatureNumStorePurchases, Expression: fmt.Sprintf("num_store_purchases <= %d", MaxPurchaseCount), Message: fmt.Sprintf("store purchases must be at most %d", MaxPurchaseCount)},
		{ID: "catalog-purchases-min", Field: domain.FeatureNumCatalogPurchases, Expression: "num_catalog_purchases >= 0", Message: "catalog purchases must be at least 0"},
		{ID: "catalog-purchases-max", Field: domain.FeatureNumCatalogPurchases, Expression: fmt.Sprintf("num_catalog_purchases <= %d", MaxPurchaseCount), Message: fmt.Sprintf("catalog purchases must be at most %d", MaxPurchaseCount)},
		{ID: "total-purchases-min", Field: domain.FeatureTotalPurchases, Expression: "total_purchases >= 0", Message: "total purchases must be at least 0"},
		{ID: "deals-purchases-min", Field: domain.FeatureNumDealsPurchases, Expression: "num_deals_purchases >= 0", Message: "deals purchases must be at least 0"},
		{ID: "web-visits-min", Field: domain.FeatureNumWebVisitsMonth, Expression: "num_web_visits_month >= 0", Message: "web visits per month must be at least 0"},
		{ID: "income-min", Field: domain.FeatureIncome, Expression: "income >= 10000.0", Message: "income must be at least 10000"},
		{ID: "age-min", Field: domain.FeatureAge, Expression: "age >= 18", Message: "age must be at least 18"},
	}
}
