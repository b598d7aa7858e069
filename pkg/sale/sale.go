// Package sale defines the normalized sale records produced by the sync
// pipeline and consumed by the dashboard and persistence layers.
package sale

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a currency value. Internally it is exact decimal arithmetic;
// on the wire it is always a string with two decimal places.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value as an Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromString parses a provider money string. Empty strings parse as zero,
// matching provider payloads that omit optional totals.
func AmountFromString(s string) (Amount, error) {
	if s == "" {
		return Amount{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{Decimal: d}, nil
}

// MarshalJSON serializes the amount as a 2 decimal place string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.StringFixed(2))
}

// UnmarshalJSON accepts either a JSON string or number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := AmountFromString(s)
		if perr != nil {
			return perr
		}
		*a = parsed
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("unmarshal amount: %w", err)
	}
	*a = Amount{Decimal: d}
	return nil
}

// ItemFee carries a provider fee attached to a line item.
type ItemFee struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProcessedItem is one normalized line of a sale.
type ProcessedItem struct {
	ItemID      string   `json:"itemID"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	UnitPrice   string   `json:"unitPrice"`
	Quantity    string   `json:"quantity"`
	ExtPrice    string   `json:"extPrice"`
	Fee         *ItemFee `json:"fee,omitempty"`
}

// ProcessedSale is one normalized, aggregated transaction built from its
// constituent sale lines. SaleID is the idempotency key for persistence.
type ProcessedSale struct {
	SaleID           string          `json:"saleID"`
	TicketNumber     string          `json:"ticketNumber"`
	TimeStamp        time.Time       `json:"timeStamp"`
	Items            []ProcessedItem `json:"items"`
	CustomerName     string          `json:"customerName"`
	CustomerID       string          `json:"customerID"`
	EmployeeID       string          `json:"employeeID"`
	ShopID           string          `json:"shopID"`
	IsWorkOrder      bool            `json:"isWorkOrder"`
	Completed        bool            `json:"completed"`
	Voided           bool            `json:"voided"`
	Archived         bool            `json:"archived"`
	RegisterID       string          `json:"registerID"`
	DiscountPercent  string          `json:"discountPercent"`
	CalcTotal        Amount          `json:"calcTotal"`
	CalcSubtotal     Amount          `json:"calcSubtotal"`
	CalcTax1         Amount          `json:"calcTax1"`
	CalcTax2         Amount          `json:"calcTax2"`
	Balance          Amount          `json:"balance"`
	Total            Amount          `json:"total"`
	DisplayableTotal Amount          `json:"displayableTotal"`
}

// DayID returns the UTC calendar day key (YYYY-MM-DD) for the sale,
// or "" when the timestamp is unset.
func (s *ProcessedSale) DayID() string {
	if s.TimeStamp.IsZero() {
		return ""
	}
	return s.TimeStamp.UTC().Format("2006-01-02")
}
