package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	refs   map[Ref]bool
	groups []ItemGroup
}

func (f fakeResolver) Has(r Ref) bool { return f.refs[r] }

func (f fakeResolver) ItemGroup(id ID) (ItemGroup, bool) {
	for _, g := range f.groups {
		if g.ID == id {
			return g, true
		}
	}
	return ItemGroup{}, false
}

func (f fakeResolver) ItemGroups() []ItemGroup { return f.groups }

func validItem() Item {
	it := NewDraftItem("Burger")
	it.ID = 1001
	it.DefaultPrice = MoneyPtr(MustMoney("9.50"))
	return it
}

func TestKind_ParseAndNames(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.Slug())
		require.NoError(t, err)
		assert.Equal(t, k, got)

		got, err = ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("menu")
	assert.Error(t, err)
	assert.Equal(t, "Item Group 125", KindItemGroup.PlaceholderName(125))
}

func TestKind_IDBounds(t *testing.T) {
	assert.True(t, KindTaxGroup.InRange(99))
	assert.False(t, KindTaxGroup.InRange(100))
	assert.True(t, KindRevenueCategory.InRange(0))
	assert.False(t, KindRevenueCategory.InRange(26))
	assert.False(t, KindProductClass.InRange(0))
	assert.True(t, KindItem.InRange(7400002))
	assert.False(t, KindItem.InRange(DraftID))
}

func TestMoney(t *testing.T) {
	d, err := ParseMoney(" $1,234.5 ")
	require.NoError(t, err)
	assert.Equal(t, "1234.50", FormatMoney(d))

	assert.Equal(t, "0.12", FormatMoney(MustMoney("0.125")))
	assert.Equal(t, "0.14", FormatMoney(MustMoney("0.135")))

	_, err = ParseMoney("$")
	assert.Error(t, err)
	_, err = ParseMoney("1.2.3")
	assert.Error(t, err)
}

func TestItem_CloneAndEqual(t *testing.T) {
	it := validItem()
	it.ItemGroup = IDPtr(10)
	it.PrinterLogicals = []PrinterRef{{ID: 2, Primary: true}}
	it.ItemPrices = []ItemPrice{{LevelID: 2, Price: MustMoney("8")}}

	cp := it.Clone()
	require.True(t, it.Equal(cp))

	*cp.ItemGroup = 11
	cp.PrinterLogicals[0].Primary = false
	assert.Equal(t, ID(10), *it.ItemGroup)
	assert.True(t, it.PrinterLogicals[0].Primary)
	assert.False(t, it.Equal(cp))

	other := it.Clone()
	other.ItemPrices[0].Price = MustMoney("8.00")
	assert.True(t, it.Equal(other), "decimals compare by value")

	other.ChoiceGroups = []ChoiceGroupRef{}
	assert.True(t, it.Equal(other), "nil and empty lists are equal")
}

func TestItem_Refs(t *testing.T) {
	it := validItem()
	it.TaxGroup = IDPtr(1)
	it.ItemPrices = []ItemPrice{{LevelID: 2, Price: MustMoney("1")}}
	it.PriceLevels = []ID{2}
	it.StorePriceLevels = []ID{3}
	it.PrinterLogicals = []PrinterRef{{ID: 4, Primary: true}}

	assert.Equal(t, []Ref{
		{Kind: KindTaxGroup, ID: 1},
		{Kind: KindPriceLevel, ID: 2},
		{Kind: KindPriceLevel, ID: 3},
		{Kind: KindPrinterLogical, ID: 4},
	}, it.Refs())

	primary, ok := it.PrimaryPrinter()
	require.True(t, ok)
	assert.Equal(t, ID(4), primary)
}

func TestValidate_Item(t *testing.T) {
	res := fakeResolver{
		refs: map[Ref]bool{
			{Kind: KindRevenueCategory, ID: 3}: true,
			{Kind: KindPrinterLogical, ID: 2}:  true,
		},
		groups: []ItemGroup{{ID: 10, Name: "Mains", Range: IDRange{Start: 1000, End: 2000}}},
	}

	tests := []struct {
		name   string
		modify func(*Item)
		want   ValidationKind
	}{
		{"valid", func(*Item) {}, 0},
		{"draft id", func(it *Item) { it.ID = DraftID }, InvalidID},
		{"empty name", func(it *Item) { it.Name = "" }, EmptyName},
		{"id beats name", func(it *Item) { it.ID = DraftID; it.Name = "" }, InvalidID},
		{"missing button", func(it *Item) { it.Button1 = "" }, EmptyName},
		{"long button", func(it *Item) { it.Button1 = "A very long button" }, NameTooLong},
		{"negative price", func(it *Item) { it.DefaultPrice = MoneyPtr(MustMoney("-1")) }, InvalidPrice},
		{"weight without use weight", func(it *Item) { it.WeightTare = MustMoney("0.5") }, InvalidValue},
		{"two primaries", func(it *Item) {
			it.PrinterLogicals = []PrinterRef{{ID: 2, Primary: true}, {ID: 2, Primary: true}}
		}, InvalidValue},
		{"no primary", func(it *Item) { it.PrinterLogicals = []PrinterRef{{ID: 2}} }, InvalidValue},
		{"missing group", func(it *Item) { it.ItemGroup = IDPtr(11) }, MissingItemGroup},
		{"outside group range", func(it *Item) { it.ItemGroup = IDPtr(10); it.ID = 2000 }, InvalidRange},
		{"inside group range", func(it *Item) { it.ItemGroup = IDPtr(10) }, 0},
		{"missing revenue category", func(it *Item) { it.RevenueCategory = IDPtr(4) }, MissingRevenueCategory},
		{"missing tax group", func(it *Item) { it.TaxGroup = IDPtr(1) }, InvalidReference},
		{"value beats reference", func(it *Item) {
			it.TaxGroup = IDPtr(1)
			it.Cost = MoneyPtr(MustMoney("-0.01"))
		}, InvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := validItem()
			tt.modify(&it)
			err := Validate(it, res)
			if tt.want == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.True(t, errors.Is(err, &ValidationError{Kind: tt.want}))
		})
	}
}

func TestValidate_ReferenceKinds(t *testing.T) {
	groups := fakeResolver{groups: []ItemGroup{{ID: 1, Name: "A", Range: IDRange{Start: 100, End: 200}}}}

	tests := []struct {
		name string
		e    Entity
		want ValidationKind
	}{
		{"group range empty", ItemGroup{ID: 2, Name: "B", Range: IDRange{Start: 300, End: 300}}, InvalidRange},
		{"group range overlaps", ItemGroup{ID: 2, Name: "B", Range: IDRange{Start: 199, End: 250}}, RangeOverlap},
		{"group range adjacent", ItemGroup{ID: 2, Name: "B", Range: IDRange{Start: 200, End: 250}}, 0},
		{"group id too high", ItemGroup{ID: 1000, Name: "B", Range: IDRange{Start: 1, End: 2}}, InvalidID},
		{"price level negative", PriceLevel{ID: 1, Name: "Happy", Price: MustMoney("-1"), Type: PriceLevelStore}, InvalidPrice},
		{"price level type", PriceLevel{ID: 1, Name: "Happy", Type: "region"}, InvalidValue},
		{"tax rate above one", TaxGroup{ID: 1, Name: "Tax", Rate: MustMoney("1.01")}, InvalidRate},
		{"tax rate one", TaxGroup{ID: 1, Name: "Tax", Rate: MustMoney("1")}, 0},
		{"named too long", Named{Kind: KindChoiceGroup, ID: 1, Name: "Seventeen chars!!"}, NameTooLong},
		{"named sixteen", Named{Kind: KindChoiceGroup, ID: 1, Name: "Sixteen chars!!!"}, 0},
		{"revenue category zero", Named{Kind: KindRevenueCategory, ID: 0, Name: "None"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.e, groups)
			if tt.want == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestTaxGroup_Percentage(t *testing.T) {
	tg := TaxGroup{ID: 1, Name: "Food", Rate: MustMoney("0.0825")}
	assert.Equal(t, "8.25", tg.Percentage().StringFixed(2))
}
