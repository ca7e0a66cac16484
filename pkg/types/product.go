package types

// ProductResult is the normalized product snapshot returned by search and
// persisted into the search cache. Price is the display string ("$3.49");
// callers that need arithmetic parse it into a decimal.
type ProductResult struct {
	Name           string  `json:"name"`
	Price          string  `json:"price"`
	Aisle          string  `json:"aisle"`
	Image          string  `json:"image"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
	UnitPrice      *string `json:"unit_price,omitempty"`
	SellByUnit     string  `json:"sell_by_unit,omitempty"`
	ApproxWeight   float64 `json:"approx_weight,omitempty"`
	SearchTerm     string  `json:"search_term,omitempty"`
}

// ProductResults is the JSONB payload stored per cached search.
type ProductResults []ProductResult
