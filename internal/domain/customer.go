package domain

// Feature column names as the model artifacts know them.
const (
	FeatureRecency             = "Recency"
	FeatureTotalSpending       = "Total_Spending"
	FeatureNumWebPurchases     = "NumWebPurchases"
	FeatureNumStorePurchases   = "NumStorePurchases"
	FeatureNumCatalogPurchases = "NumCatalogPurchases"
	FeatureNumDealsPurchases   = "NumDealsPurchases"
	FeatureNumWebVisitsMonth   = "NumWebVisitsMonth"
	FeatureIncome              = "Income"
	FeatureAge                 = "Age"
	FeatureTotalPurchases      = "Total_Purchases"
)

// FeatureNames returns every feature a CustomerRecord can supply, in form order.
func FeatureNames() []string {
	return []string{
		FeatureRecency,
		FeatureTotalSpending,
		FeatureNumWebPurchases,
		FeatureNumStorePurchases,
		FeatureNumCatalogPurchases,
		FeatureNumDealsPurchases,
		FeatureNumWebVisitsMonth,
		FeatureIncome,
		FeatureAge,
		FeatureTotalPurchases,
	}
}

// CustomerRecord is one customer's behavioral and demographic attributes.
// It is built fresh per request and never mutated.
type CustomerRecord struct {
	// Days since last purchase
	Recency int `json:"recency"`

	TotalSpending float64 `json:"totalSpending"`

	// Purchase channels
	NumWebPurchases     int `json:"numWebPurchases"`
	NumStorePurchases   int `json:"numStorePurchases"`
	NumCatalogPurchases int `json:"numCatalogPurchases"`

	// Carried to the clustering model only
	NumDealsPurchases int `json:"numDealsPurchases"`
	NumWebVisitsMonth int `json:"numWebVisitsMonth"`

	Income float64 `json:"income"`
	Age    int     `json:"age"`
}

// TotalPurchases sums the three purchase channels. Deals are not a channel.
func (c CustomerRecord) TotalPurchases() int {
	return c.NumWebPurchases + c.NumStorePurchases + c.NumCatalogPurchases
}

// Features returns the raw named feature vector, including the derived
// Total_Purchases column.
func (c CustomerRecord) Features() map[string]float64 {
	return map[string]float64{
		FeatureRecency:             float64(c.Recency),
		FeatureTotalSpending:       c.TotalSpending,
		FeatureNumWebPurchases:     float64(c.NumWebPurchases),
		FeatureNumStorePurchases:   float64(c.NumStorePurchases),
		FeatureNumCatalogPurchases: float64(c.NumCatalogPurchases),
		FeatureNumDealsPurchases:   float64(c.NumDealsPurchases),
		FeatureNumWebVisitsMonth:   float64(c.NumWebVisitsMonth),
		FeatureIncome:              c.Income,
		FeatureAge:                 float64(c.Age),
		FeatureTotalPurchases:      float64(c.TotalPurchases()),
	}
}
