// Package lightspeed is a client for the Lightspeed Retail V3 API surface
// used by the sales sync pipeline: paginated sale line fetches, item detail
// lookups, batched customer lookups and the OAuth refresh grant.
package lightspeed

import (
	"encoding/json"
	"fmt"
)

// Item is the item relation attached to a sale line, or the body of a
// standalone item detail fetch.
type Item struct {
	ItemID          string `json:"itemID"`
	Description     string `json:"description"`
	LongDescription string `json:"longDescription"`
}

// TaxClass is the tax class relation attached to a sale line.
type TaxClass struct {
	TaxClassID string `json:"taxClassID"`
	Name       string `json:"name"`
}

// ItemFee is a provider fee attached to a sale line.
type ItemFee struct {
	ItemFeeID string `json:"itemFeeID"`
	Name      string `json:"name"`
	FeeValue  string `json:"feeValue"`
}

// Customer is a customer record, either nested under a Sale relation or
// returned by the Customer endpoint.
type Customer struct {
	CustomerID string `json:"customerID"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// SaleRef is the sale relation attached to a sale line. All flag fields are
// provider string booleans ("true"/"false").
type SaleRef struct {
	SaleID     string    `json:"saleID"`
	TimeStamp  string    `json:"timeStamp"`
	Completed  string    `json:"completed"`
	Archived   string    `json:"archived"`
	Voided     string    `json:"voided"`
	RegisterID string    `json:"registerID"`
	Customer   *Customer `json:"Customer"`
}

// SaleLine is one flat line-item record as returned by the provider.
// Numeric values are provider strings; they stay strings until the
// assembler converts them to decimals.
type SaleLine struct {
	SaleLineID   string    `json:"saleLineID"`
	CreateTime   string    `json:"createTime"`
	TimeStamp    string    `json:"timeStamp"`
	UnitQuantity string    `json:"unitQuantity"`
	UnitPrice    string    `json:"unitPrice"`
	CalcTotal    string    `json:"calcTotal"`
	CalcSubtotal string    `json:"calcSubtotal"`
	CalcTax1     string    `json:"calcTax1"`
	CalcTax2     string    `json:"calcTax2"`
	ItemID       string    `json:"itemID"`
	SaleID       string    `json:"saleID"`
	IsWorkorder  string    `json:"isWorkorder"`
	CustomerID   string    `json:"customerID"`
	EmployeeID   string    `json:"employeeID"`
	ShopID       string    `json:"shopID"`
	ItemFee      *ItemFee  `json:"ItemFee"`
	TaxClass     *TaxClass `json:"TaxClass"`
	Item         *Item     `json:"Item"`
	Sale         *SaleRef  `json:"Sale"`
}

// SaleLines normalizes the provider's one-or-many JSON shape: a single
// result arrives as an object, multiple results as an array. After decoding
// it is always a slice.
type SaleLines []SaleLine

// UnmarshalJSON accepts either a single SaleLine object or an array of them.
func (s *SaleLines) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var many []SaleLine
		if err := json.Unmarshal(data, &many); err != nil {
			return fmt.Errorf("decode sale line array: %w", err)
		}
		*s = many
		return nil
	}
	var one SaleLine
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("decode sale line object: %w", err)
	}
	*s = SaleLines{one}
	return nil
}

// Customers normalizes the one-or-many shape of the Customer endpoint.
type Customers []Customer

// UnmarshalJSON accepts either a single Customer object or an array of them.
func (c *Customers) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var many []Customer
		if err := json.Unmarshal(data, &many); err != nil {
			return fmt.Errorf("decode customer array: %w", err)
		}
		*c = many
		return nil
	}
	var one Customer
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("decode customer object: %w", err)
	}
	*c = Customers{one}
	return nil
}

// PageAttributes is the pagination metadata block on list responses.
// Next holds a complete URL for the following page, or "" on the last page.
type PageAttributes struct {
	Count    string `json:"count"`
	Offset   string `json:"offset"`
	Limit    string `json:"limit"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

// SaleLinePage is one page of the SaleLine endpoint. A page with no matching
// records omits the SaleLine key entirely; Lines is then empty.
type SaleLinePage struct {
	Attributes PageAttributes `json:"@attributes"`
	Lines      SaleLines      `json:"SaleLine"`
}

// CustomerPage is one response of the Customer endpoint.
type CustomerPage struct {
	Attributes PageAttributes `json:"@attributes"`
	Customers  Customers      `json:"Customer"`
}

// ItemPage is the response of a single item detail fetch.
type ItemPage struct {
	Item *Item `json:"Item"`
}

// APIError is a non-2xx response from the provider. The orchestrator
// inspects StatusCode to apply the first-page token refresh rule.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("lightspeed api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("lightspeed api returned %d: %s", e.StatusCode, e.Body)
}
