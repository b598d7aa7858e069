package sync

import (
	"strings"
	"testing"
	"time"

	"github.com/taployalty/lightspeed-sync/pkg/lightspeed"
)

func lineGroup(lines ...*lightspeed.SaleLine) LineGroup {
	return LineGroup{SaleID: lines[0].SaleID, Lines: lines}
}

func TestAssembleSale_EmptyGroup(t *testing.T) {
	_, err := AssembleSale(LineGroup{SaleID: "9"}, nil)
	if err == nil {
		t.Fatal("expected error for empty group")
	}
}

func TestAssembleSale_SumsPerFieldAndRounds(t *testing.T) {
	group := lineGroup(
		&lightspeed.SaleLine{SaleID: "42", TimeStamp: "2026-08-27T14:30:00+00:00", CalcTotal: "4.50", CalcSubtotal: "4.00", CalcTax1: "0.50", CalcTax2: ""},
		&lightspeed.SaleLine{SaleID: "42", CalcTotal: "3.25", CalcSubtotal: "3.00", CalcTax1: "0.25", CalcTax2: "not-a-number"},
	)

	s, err := AssembleSale(group, nil)
	if err != nil {
		t.Fatalf("AssembleSale() failed: %v", err)
	}

	if got := s.CalcTotal.StringFixed(2); got != "7.75" {
		t.Errorf("calcTotal: expected 7.75, got %s", got)
	}
	if got := s.CalcSubtotal.StringFixed(2); got != "7.00" {
		t.Errorf("calcSubtotal: expected 7.00, got %s", got)
	}
	if got := s.CalcTax1.StringFixed(2); got != "0.75" {
		t.Errorf("calcTax1: expected 0.75, got %s", got)
	}
	// Empty and malformed values count as zero.
	if got := s.CalcTax2.StringFixed(2); got != "0.00" {
		t.Errorf("calcTax2: expected 0.00, got %s", got)
	}

	if got := s.Total.StringFixed(2); got != "7.75" {
		t.Errorf("total: expected 7.75, got %s", got)
	}
	if got := s.DisplayableTotal.StringFixed(2); got != "7.75" {
		t.Errorf("displayableTotal: expected 7.75, got %s", got)
	}
}

func TestAssembleSale_TicketNumberAndDefaults(t *testing.T) {
	group := lineGroup(&lightspeed.SaleLine{SaleID: "42", TimeStamp: "2026-08-27T14:30:00+00:00"})

	s, err := AssembleSale(group, nil)
	if err != nil {
		t.Fatalf("AssembleSale() failed: %v", err)
	}

	if s.TicketNumber != "LS-42" {
		t.Errorf("expected ticket LS-42, got %s", s.TicketNumber)
	}
	if !s.Completed || s.Voided || s.Archived {
		t.Errorf("expected defaults completed/!voided/!archived, got %v/%v/%v", s.Completed, s.Voided, s.Archived)
	}
	if s.RegisterID != "0" || s.DiscountPercent != "0" {
		t.Errorf("expected registerID/discountPercent 0, got %s/%s", s.RegisterID, s.DiscountPercent)
	}
	if s.CustomerID != "0" || s.EmployeeID != "0" || s.ShopID != "0" {
		t.Errorf("expected zero ids, got %s/%s/%s", s.CustomerID, s.EmployeeID, s.ShopID)
	}
	if s.CustomerName != "(No customer name)" {
		t.Errorf("expected placeholder customer name, got %q", s.CustomerName)
	}
	if s.Balance.StringFixed(2) != "0.00" {
		t.Errorf("expected zero balance, got %s", s.Balance.StringFixed(2))
	}

	want := time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC)
	if !s.TimeStamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, s.TimeStamp)
	}
}

func TestAssembleSale_FlagsFromSaleRelation(t *testing.T) {
	group := lineGroup(
		&lightspeed.SaleLine{
			SaleID:      "42",
			IsWorkorder: "false",
			Sale: &lightspeed.SaleRef{
				Completed:  "false",
				Voided:     "true",
				Archived:   "true",
				RegisterID: "3",
			},
		},
		&lightspeed.SaleLine{SaleID: "42", IsWorkorder: "true"},
	)

	s, err := AssembleSale(group, nil)
	if err != nil {
		t.Fatalf("AssembleSale() failed: %v", err)
	}

	if s.Completed {
		t.Error("expected completed=false")
	}
	if !s.Voided || !s.Archived {
		t.Errorf("expected voided and archived, got %v/%v", s.Voided, s.Archived)
	}
	if s.RegisterID != "3" {
		t.Errorf("expected registerID 3, got %s", s.RegisterID)
	}
	// Any line flagged as a work order marks the sale.
	if !s.IsWorkOrder {
		t.Error("expected isWorkOrder=true")
	}
}

func TestAssembleSale_InvalidTimestampKeepsSale(t *testing.T) {
	group := lineGroup(&lightspeed.SaleLine{SaleID: "42", TimeStamp: "yesterday"})

	s, err := AssembleSale(group, nil)
	if err != nil {
		t.Fatalf("AssembleSale() failed: %v", err)
	}
	if !s.TimeStamp.IsZero() {
		t.Errorf("expected zero timestamp, got %v", s.TimeStamp)
	}
	if s.DayID() != "" {
		t.Errorf("expected empty dayID, got %q", s.DayID())
	}
}

func TestBuildItem_NamePriority(t *testing.T) {
	longDesc := strings.Repeat("x", 80)

	tests := []struct {
		name     string
		line     *lightspeed.SaleLine
		wantName string
	}{
		{
			name:     "description wins",
			line:     &lightspeed.SaleLine{ItemID: "7", Item: &lightspeed.Item{Description: "Coffee", LongDescription: "Dark roast"}},
			wantName: "Coffee",
		},
		{
			name:     "long description truncated",
			line:     &lightspeed.SaleLine{ItemID: "7", Item: &lightspeed.Item{LongDescription: longDesc}},
			wantName: longDesc[:50] + "...",
		},
		{
			name:     "short long description kept whole",
			line:     &lightspeed.SaleLine{ItemID: "7", Item: &lightspeed.Item{LongDescription: "Espresso"}},
			wantName: "Espresso",
		},
		{
			name:     "tax class only when item missing",
			line:     &lightspeed.SaleLine{ItemID: "7", TaxClass: &lightspeed.TaxClass{Name: "Service Fee"}},
			wantName: "Service Fee",
		},
		{
			name:     "tax class ignored when item present",
			line:     &lightspeed.SaleLine{ItemID: "7", Item: &lightspeed.Item{}, TaxClass: &lightspeed.TaxClass{Name: "Service Fee"}},
			wantName: "Item #7",
		},
		{
			name:     "fallback to item id",
			line:     &lightspeed.SaleLine{ItemID: "7"},
			wantName: "Item #7",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := buildItem(tc.line)
			if item.Name != tc.wantName {
				t.Errorf("expected name %q, got %q", tc.wantName, item.Name)
			}
		})
	}
}

func TestBuildItem_PassthroughDefaultsAndFee(t *testing.T) {
	line := &lightspeed.SaleLine{
		ItemID:  "7",
		ItemFee: &lightspeed.ItemFee{Name: "Deposit", FeeValue: "0.10"},
	}

	item := buildItem(line)

	if item.UnitPrice != "0" {
		t.Errorf("expected unitPrice 0, got %s", item.UnitPrice)
	}
	if item.Quantity != "1" {
		t.Errorf("expected quantity 1, got %s", item.Quantity)
	}
	if item.ExtPrice != "0" {
		t.Errorf("expected extPrice 0, got %s", item.ExtPrice)
	}
	if item.Fee == nil || item.Fee.Name != "Deposit" || item.Fee.Value != "0.10" {
		t.Errorf("unexpected fee: %+v", item.Fee)
	}

	priced := buildItem(&lightspeed.SaleLine{ItemID: "7", UnitPrice: "2.50", UnitQuantity: "3", CalcTotal: "7.50"})
	if priced.UnitPrice != "2.50" || priced.Quantity != "3" || priced.ExtPrice != "7.50" {
		t.Errorf("unexpected passthrough: %+v", priced)
	}
	if priced.Fee != nil {
		t.Errorf("expected no fee, got %+v", priced.Fee)
	}
}

func TestResolveCustomerName_Priority(t *testing.T) {
	customers := map[string]CustomerName{
		"55": {FirstName: "Ada", LastName: "Lovelace"},
		"56": {FirstName: "", LastName: ""},
	}

	tests := []struct {
		name string
		line *lightspeed.SaleLine
		want string
	}{
		{
			name: "lookup map wins",
			line: &lightspeed.SaleLine{CustomerID: "55", Sale: &lightspeed.SaleRef{Customer: &lightspeed.Customer{FirstName: "Other", LastName: "Person"}}},
			want: "Ada Lovelace",
		},
		{
			name: "blank lookup falls through to relation",
			line: &lightspeed.SaleLine{CustomerID: "56", Sale: &lightspeed.SaleRef{Customer: &lightspeed.Customer{FirstName: "Grace", LastName: "Hopper"}}},
			want: "Grace Hopper",
		},
		{
			name: "relation only",
			line: &lightspeed.SaleLine{CustomerID: "99", Sale: &lightspeed.SaleRef{Customer: &lightspeed.Customer{FirstName: "Grace"}}},
			want: "Grace",
		},
		{
			name: "zero customer id placeholder",
			line: &lightspeed.SaleLine{CustomerID: "0"},
			want: "(No customer name)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveCustomerName(tc.line, customers)
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
