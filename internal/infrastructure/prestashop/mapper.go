package prestashop

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/restockly/backend/internal/domain"
)

// PrestaShop language ids for the two shop languages.
const (
	primaryLangID   = "1"
	secondaryLangID = "2"
)

// flexString decodes PrestaShop scalar fields, which arrive either as JSON
// strings or as numbers depending on shop version and endpoint.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// productPayload is the subset of a PrestaShop product resource the
// similarity engine needs.
type productPayload struct {
	ID               flexString           `json:"id"`
	Name             json.RawMessage      `json:"name"`
	CategoryID       flexString           `json:"id_category_default"`
	Quantity         flexString           `json:"quantity"`
	Price            flexString           `json:"price"`
	ManufacturerName flexString           `json:"manufacturer_name"`
	Reference        flexString           `json:"reference"`
	Associations     *productAssociations `json:"associations"`
}

type productAssociations struct {
	StockAvailables []stockAssociation `json:"stock_availables"`
}

type stockAssociation struct {
	Quantity flexString `json:"quantity"`
}

// stockPayload is one row of the stock_availables resource.
type stockPayload struct {
	ProductID flexString `json:"id_product"`
	Quantity  flexString `json:"quantity"`
}

type localizedEntry struct {
	ID    flexString `json:"id"`
	Value string     `json:"value"`
}

// extractLocalizedName pulls one language out of a PrestaShop
// multi-language field. The field arrives as a plain string, an array of
// {id, value} entries, or an object with a value key. With an empty langID
// the first available entry wins.
func extractLocalizedName(raw json.RawMessage, langID string) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var entries []localizedEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		if langID != "" {
			for _, entry := range entries {
				if string(entry.ID) == langID {
					return entry.Value
				}
			}
			return ""
		}
		if len(entries) > 0 {
			return entries[0].Value
		}
		return ""
	}

	var object struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &object); err == nil {
		return object.Value
	}

	return ""
}

// mapToProduct converts a PrestaShop product payload into the universal
// Product. Returns nil when the payload is unusable (no id or no name).
func mapToProduct(payload *productPayload) *domain.Product {
	if payload == nil {
		return nil
	}

	id := strings.TrimSpace(string(payload.ID))
	if id == "" || id == "0" {
		return nil
	}

	name := extractLocalizedName(payload.Name, primaryLangID)
	if name == "" {
		name = extractLocalizedName(payload.Name, "")
	}
	if name == "" {
		return nil
	}

	nameSecondary := extractLocalizedName(payload.Name, secondaryLangID)
	if nameSecondary == name {
		// Single-language shops repeat the same value under every id.
		nameSecondary = ""
	}

	product := &domain.Product{
		ID:               id,
		Name:             name,
		NameSecondary:    nameSecondary,
		CategoryID:       strings.TrimSpace(string(payload.CategoryID)),
		ManufacturerName: strings.TrimSpace(string(payload.ManufacturerName)),
		SKU:              strings.TrimSpace(string(payload.Reference)),
		Quantity:         extractQuantity(payload),
	}

	if raw := strings.TrimSpace(string(payload.Price)); raw != "" {
		if price, err := strconv.ParseFloat(raw, 64); err == nil {
			product.Price = &price
		}
	}

	return product
}

// extractQuantity reads stock either from the embedded stock_availables
// association or from the direct quantity field.
func extractQuantity(payload *productPayload) int {
	if payload.Associations != nil && len(payload.Associations.StockAvailables) > 0 {
		if qty, err := strconv.Atoi(strings.TrimSpace(string(payload.Associations.StockAvailables[0].Quantity))); err == nil {
			return qty
		}
	}
	if qty, err := strconv.Atoi(strings.TrimSpace(string(payload.Quantity))); err == nil {
		return qty
	}
	return 0
}
