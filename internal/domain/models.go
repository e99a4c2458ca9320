package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	PriceLevelEnterprise PriceLevelType = "enterprise"
	PriceLevelStore      PriceLevelType = "store"
)

type PriceLevelType string

func (t PriceLevelType) Valid() bool {
	return t == PriceLevelEnterprise || t == PriceLevelStore
}

// Entity is implemented by every catalog record.
type Entity interface {
	Ref() Ref
	DisplayName() string
}

// IDRange is the half-open identifier interval [Start, End).
type IDRange struct {
	Start ID `json:"start"`
	End   ID `json:"end"`
}

func (r IDRange) Contains(id ID) bool {
	return id >= r.Start && id < r.End
}

func (r IDRange) Overlaps(o IDRange) bool {
	return r.Start < o.End && o.Start < r.End
}

type ItemGroup struct {
	ID    ID      `json:"id"`
	Name  string  `json:"name"`
	Range IDRange `json:"range"`
}

func (g ItemGroup) Ref() Ref            { return Ref{Kind: KindItemGroup, ID: g.ID} }
func (g ItemGroup) DisplayName() string { return g.Name }

type PriceLevel struct {
	ID    ID              `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Type  PriceLevelType  `json:"type"`
}

func (p PriceLevel) Ref() Ref            { return Ref{Kind: KindPriceLevel, ID: p.ID} }
func (p PriceLevel) DisplayName() string { return p.Name }

// TaxGroup rates are fractions: 0.0825 is 8.25%.
type TaxGroup struct {
	ID   ID              `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

func (t TaxGroup) Ref() Ref            { return Ref{Kind: KindTaxGroup, ID: t.ID} }
func (t TaxGroup) DisplayName() string { return t.Name }

func (t TaxGroup) Percentage() decimal.Decimal {
	return t.Rate.Mul(decimal.NewFromInt(100))
}

// Named covers security levels, revenue and report categories, product classes,
// choice groups and printer logicals.
type Named struct {
	Kind Kind   `json:"-"`
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

func (n Named) Ref() Ref            { return Ref{Kind: n.Kind, ID: n.ID} }
func (n Named) DisplayName() string { return n.Name }

type ItemPrice struct {
	LevelID ID              `json:"level_id"`
	Price   decimal.Decimal `json:"price"`
}

type ChoiceGroupRef struct {
	ID       ID  `json:"id"`
	Sequence int `json:"sequence"`
}

type PrinterRef struct {
	ID      ID   `json:"id"`
	Primary bool `json:"primary"`
}

type Item struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Button1     string `json:"button1"`
	Button2     string `json:"button2,omitempty"`
	PrinterText string `json:"printer_text,omitempty"`

	DefaultPrice *decimal.Decimal `json:"default_price,omitempty"`
	ItemPrices   []ItemPrice      `json:"item_prices,omitempty"`

	ItemGroup       *ID `json:"item_group,omitempty"`
	ProductClass    *ID `json:"product_class,omitempty"`
	RevenueCategory *ID `json:"revenue_category,omitempty"`
	TaxGroup        *ID `json:"tax_group,omitempty"`
	SecurityLevel   *ID `json:"security_level,omitempty"`
	ReportCategory  *ID `json:"report_category,omitempty"`

	UseWeight  bool             `json:"use_weight"`
	WeightTare decimal.Decimal  `json:"weight_tare"`
	SKU        string           `json:"sku,omitempty"`
	BarGunCode string           `json:"bar_gun_code,omitempty"`
	Cost       *decimal.Decimal `json:"cost,omitempty"`

	Reserved1          bool `json:"reserved1"`
	AskPrice           bool `json:"ask_price"`
	PrintOnCheck       bool `json:"print_on_check"`
	Discountable       bool `json:"discountable"`
	Voidable           bool `json:"voidable"`
	NotActive          bool `json:"not_active"`
	TaxIncluded        bool `json:"tax_included"`
	Reserved2          bool `json:"reserved2"`
	AllowPriceOverride bool `json:"allow_price_override"`
	StockItem          bool `json:"stock_item"`

	CustomerReceipt string `json:"customer_receipt,omitempty"`

	ChoiceGroups     []ChoiceGroupRef `json:"choice_groups,omitempty"`
	PrinterLogicals  []PrinterRef     `json:"printer_logicals,omitempty"`
	PriceLevels      []ID             `json:"price_levels,omitempty"`
	StorePriceLevels []ID             `json:"store_price_levels,omitempty"`

	Covers        int    `json:"covers"`
	StoreID       int    `json:"store_id"`
	ImageID       int    `json:"image_id"`
	KitchenVideo  string `json:"kitchen_video,omitempty"`
	KDSDepartment int    `json:"kds_department"`
	KDSCategory   string `json:"kds_category,omitempty"`
	KDSCookTime   int    `json:"kds_cook_time"`
	LanguageISO   string `json:"language_iso,omitempty"`
}

func (it Item) Ref() Ref            { return Ref{Kind: KindItem, ID: it.ID} }
func (it Item) DisplayName() string { return it.Name }

// NewDraftItem returns an unsaved item with the POS defaults for new records.
func NewDraftItem(name string) Item {
	return Item{
		ID:           DraftID,
		Name:         name,
		Button1:      name,
		PrintOnCheck: true,
		Discountable: true,
		Voidable:     true,
	}
}

// Clone returns a deep copy; the result shares no slices or pointers with it.
func (it Item) Clone() Item {
	out := it
	out.DefaultPrice = cloneMoney(it.DefaultPrice)
	out.Cost = cloneMoney(it.Cost)
	out.ItemGroup = cloneID(it.ItemGroup)
	out.ProductClass = cloneID(it.ProductClass)
	out.RevenueCategory = cloneID(it.RevenueCategory)
	out.TaxGroup = cloneID(it.TaxGroup)
	out.SecurityLevel = cloneID(it.SecurityLevel)
	out.ReportCategory = cloneID(it.ReportCategory)
	out.ItemPrices = slices.Clone(it.ItemPrices)
	out.ChoiceGroups = slices.Clone(it.ChoiceGroups)
	out.PrinterLogicals = slices.Clone(it.PrinterLogicals)
	out.PriceLevels = slices.Clone(it.PriceLevels)
	out.StorePriceLevels = slices.Clone(it.StorePriceLevels)
	return out
}

// Equal compares structurally, decimals by value. Nil and empty lists are equal.
func (it Item) Equal(o Item) bool {
	if it.ID != o.ID || it.Name != o.Name || it.Button1 != o.Button1 || it.Button2 != o.Button2 ||
		it.PrinterText != o.PrinterText || it.SKU != o.SKU || it.BarGunCode != o.BarGunCode ||
		it.CustomerReceipt != o.CustomerReceipt || it.KitchenVideo != o.KitchenVideo ||
		it.KDSCategory != o.KDSCategory || it.LanguageISO != o.LanguageISO {
		return false
	}
	if it.UseWeight != o.UseWeight || it.Reserved1 != o.Reserved1 || it.AskPrice != o.AskPrice ||
		it.PrintOnCheck != o.PrintOnCheck || it.Discountable != o.Discountable ||
		it.Voidable != o.Voidable || it.NotActive != o.NotActive || it.TaxIncluded != o.TaxIncluded ||
		it.Reserved2 != o.Reserved2 || it.AllowPriceOverride != o.AllowPriceOverride ||
		it.StockItem != o.StockItem {
		return false
	}
	if it.Covers != o.Covers || it.StoreID != o.StoreID || it.ImageID != o.ImageID ||
		it.KDSDepartment != o.KDSDepartment || it.KDSCookTime != o.KDSCookTime {
		return false
	}
	if !equalMoneyPtr(it.DefaultPrice, o.DefaultPrice) || !equalMoneyPtr(it.Cost, o.Cost) ||
		!it.WeightTare.Equal(o.WeightTare) {
		return false
	}
	if !equalIDPtr(it.ItemGroup, o.ItemGroup) || !equalIDPtr(it.ProductClass, o.ProductClass) ||
		!equalIDPtr(it.RevenueCategory, o.RevenueCategory) || !equalIDPtr(it.TaxGroup, o.TaxGroup) ||
		!equalIDPtr(it.SecurityLevel, o.SecurityLevel) || !equalIDPtr(it.ReportCategory, o.ReportCategory) {
		return false
	}
	if !slices.EqualFunc(it.ItemPrices, o.ItemPrices, func(a, b ItemPrice) bool {
		return a.LevelID == b.LevelID && a.Price.Equal(b.Price)
	}) {
		return false
	}
	return slices.Equal(it.ChoiceGroups, o.ChoiceGroups) &&
		slices.Equal(it.PrinterLogicals, o.PrinterLogicals) &&
		slices.Equal(it.PriceLevels, o.PriceLevels) &&
		slices.Equal(it.StorePriceLevels, o.StorePriceLevels)
}

// SingleRef returns the optional single-valued reference of the given kind.
func (it *Item) SingleRef(kind Kind) **ID {
	switch kind {
	case KindItemGroup:
		return &it.ItemGroup
	case KindProductClass:
		return &it.ProductClass
	case KindRevenueCategory:
		return &it.RevenueCategory
	case KindTaxGroup:
		return &it.TaxGroup
	case KindSecurityLevel:
		return &it.SecurityLevel
	case KindReportCategory:
		return &it.ReportCategory
	}
	return nil
}

// Refs lists every outgoing reference of the item, in field order, without duplicates.
func (it Item) Refs() []Ref {
	var out []Ref
	seen := make(map[Ref]struct{})
	add := func(kind Kind, id ID) {
		r := Ref{Kind: kind, ID: id}
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	for _, kind := range []Kind{KindProductClass, KindRevenueCategory, KindTaxGroup,
		KindSecurityLevel, KindReportCategory, KindItemGroup} {
		if p := *it.SingleRef(kind); p != nil {
			add(kind, *p)
		}
	}
	for _, p := range it.ItemPrices {
		add(KindPriceLevel, p.LevelID)
	}
	for _, id := range it.PriceLevels {
		add(KindPriceLevel, id)
	}
	for _, id := range it.StorePriceLevels {
		add(KindPriceLevel, id)
	}
	for _, c := range it.ChoiceGroups {
		add(KindChoiceGroup, c.ID)
	}
	for _, p := range it.PrinterLogicals {
		add(KindPrinterLogical, p.ID)
	}
	return out
}

// PrimaryPrinter returns the printer flagged primary.
func (it Item) PrimaryPrinter() (ID, bool) {
	for _, p := range it.PrinterLogicals {
		if p.Primary {
			return p.ID, true
		}
	}
	return 0, false
}

// PriceAt returns the item price stored for a level.
func (it Item) PriceAt(level ID) (decimal.Decimal, bool) {
	for _, p := range it.ItemPrices {
		if p.LevelID == level {
			return p.Price, true
		}
	}
	return decimal.Zero, false
}

func IDPtr(id ID) *ID { return &id }

func cloneID(p *ID) *ID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMoney(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalIDPtr(a, b *ID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
