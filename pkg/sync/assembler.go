package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taployalty/lightspeed-sync/pkg/lightspeed"
	"github.com/taployalty/lightspeed-sync/pkg/sale"
)

const (
	longDescriptionMaxLen = 50
	noCustomerPlaceholder = "(No customer name)"
)

// AssembleSale turns one group of sale lines plus the run's customer-name
// map into a normalized sale record.
func AssembleSale(group LineGroup, customers map[string]CustomerName) (*sale.ProcessedSale, error) {
	if len(group.Lines) == 0 {
		return nil, fmt.Errorf("sale %s: no lines", group.SaleID)
	}
	first := group.Lines[0]

	items := make([]sale.ProcessedItem, 0, len(group.Lines))
	var calcTotal, calcSubtotal, calcTax1, calcTax2 decimal.Decimal
	isWorkOrder := false

	for _, line := range group.Lines {
		items = append(items, buildItem(line))

		calcTotal = calcTotal.Add(parseLineAmount(line.CalcTotal))
		calcSubtotal = calcSubtotal.Add(parseLineAmount(line.CalcSubtotal))
		calcTax1 = calcTax1.Add(parseLineAmount(line.CalcTax1))
		calcTax2 = calcTax2.Add(parseLineAmount(line.CalcTax2))

		if line.IsWorkorder == "true" {
			isWorkOrder = true
		}
	}

	// Each aggregate is rounded independently.
	calcTotal = calcTotal.Round(2)
	calcSubtotal = calcSubtotal.Round(2)
	calcTax1 = calcTax1.Round(2)
	calcTax2 = calcTax2.Round(2)

	completed, voided, archived := true, false, false
	registerID := "0"
	customerName := resolveCustomerName(first, customers)

	if first.Sale != nil {
		if first.Sale.Completed != "" {
			completed = first.Sale.Completed == "true"
		}
		if first.Sale.Voided != "" {
			voided = first.Sale.Voided == "true"
		}
		if first.Sale.Archived != "" {
			archived = first.Sale.Archived == "true"
		}
		if first.Sale.RegisterID != "" {
			registerID = first.Sale.RegisterID
		}
	}

	timeStamp, err := time.Parse(time.RFC3339, first.TimeStamp)
	if err != nil {
		// Keep the sale; it just won't land in a daily bucket.
		timeStamp = time.Time{}
	}

	customerID := first.CustomerID
	if customerID == "" {
		customerID = "0"
	}
	employeeID := first.EmployeeID
	if employeeID == "" {
		employeeID = "0"
	}
	shopID := first.ShopID
	if shopID == "" {
		shopID = "0"
	}

	total := sale.NewAmount(calcTotal)

	return &sale.ProcessedSale{
		SaleID:           group.SaleID,
		TicketNumber:     "LS-" + group.SaleID,
		TimeStamp:        timeStamp,
		Items:            items,
		CustomerName:     customerName,
		CustomerID:       customerID,
		EmployeeID:       employeeID,
		ShopID:           shopID,
		IsWorkOrder:      isWorkOrder,
		Completed:        completed,
		Voided:           voided,
		Archived:         archived,
		RegisterID:       registerID,
		DiscountPercent:  "0",
		CalcTotal:        total,
		CalcSubtotal:     sale.NewAmount(calcSubtotal),
		CalcTax1:         sale.NewAmount(calcTax1),
		CalcTax2:         sale.NewAmount(calcTax2),
		Balance:          sale.Amount{},
		Total:            total,
		DisplayableTotal: total,
	}, nil
}

// buildItem resolves the display name for one line. Priority: the item's
// description, then its long description truncated with an ellipsis, then
// the tax class name when no item relation exists, then "Item #<itemID>".
func buildItem(line *lightspeed.SaleLine) sale.ProcessedItem {
	name := "Item #" + line.ItemID
	description := ""

	switch {
	case line.Item != nil:
		if line.Item.Description != "" {
			name = line.Item.Description
		} else if line.Item.LongDescription != "" {
			name = truncate(line.Item.LongDescription, longDescriptionMaxLen)
		}
		description = line.Item.LongDescription
	case line.TaxClass != nil && line.TaxClass.Name != "":
		name = line.TaxClass.Name
	}

	unitPrice := line.UnitPrice
	if unitPrice == "" {
		unitPrice = "0"
	}
	quantity := line.UnitQuantity
	if quantity == "" {
		quantity = "1"
	}
	extPrice := line.CalcTotal
	if extPrice == "" {
		extPrice = "0"
	}

	item := sale.ProcessedItem{
		ItemID:      line.ItemID,
		Name:        name,
		Description: description,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		ExtPrice:    extPrice,
	}
	if line.ItemFee != nil {
		item.Fee = &sale.ItemFee{
			Name:  line.ItemFee.Name,
			Value: line.ItemFee.FeeValue,
		}
	}
	return item
}

// resolveCustomerName looks up the run's customer-name map first, falls back
// to the nested Sale.Customer relation, then to a placeholder.
func resolveCustomerName(first *lightspeed.SaleLine, customers map[string]CustomerName) string {
	if first.CustomerID != "" && first.CustomerID != "0" {
		if customer, ok := customers[first.CustomerID]; ok {
			if name := strings.TrimSpace(customer.FirstName + " " + customer.LastName); name != "" {
				return name
			}
		}
	}

	if first.Sale != nil && first.Sale.Customer != nil {
		c := first.Sale.Customer
		if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
			return name
		}
	}

	return noCustomerPlaceholder
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// parseLineAmount parses a provider money string, treating empty or
// malformed values as zero.
func parseLineAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
