package domain

// Product is the universal product representation shared by every
// e-commerce adapter. It carries only the fields the similarity scorers
// read; full product data (images, URLs) lives in the marketing platform
// catalog. Products are built per request and never mutated afterwards.
type Product struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	NameSecondary    string   `json:"nameSecondary,omitempty"` // second shop language, when configured
	CategoryID       string   `json:"categoryId"`
	Quantity         int      `json:"quantity"`
	Price            *float64 `json:"price,omitempty"`
	ManufacturerName string   `json:"manufacturerName,omitempty"`
	SKU              string   `json:"sku,omitempty"`
}

// RankedProduct pairs a candidate with its composite similarity score.
type RankedProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// EnrichResult summarizes one profile enrichment run.
type EnrichResult struct {
	SimilarCount int `json:"similarCount"`
}
