package posfile

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

const spicedNuts = `"A", 7400002, "Spiced Nuts", "Spiced", "Nuts", "Spiced Nuts", {1,$8.00}, 103, 1, 1, 0, 0, 0, 0, {}, , $0.00 , 0, 0, 1, 1, 1, 0, 0, 125, "Spiced Nuts", 1, 0, {}, {2,1,3,0,6,0}, 0, 0, "Spiced Nuts", 0, "", 0, {}, 0, 0, "", 0, ""`

func decodeOne(t *testing.T, line string) domain.Item {
	t.Helper()
	batch, err := Decode(strings.NewReader(line + "\n"))
	require.NoError(t, err)
	require.Empty(t, batch.Diagnostics)
	require.Len(t, batch.Items, 1)
	return batch.Items[0]
}

func splitCount(t *testing.T, line string) int {
	t.Helper()
	escaped, err := Escape([]byte(line))
	require.NoError(t, err)
	r := csv.NewReader(bytes.NewReader(escaped))
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	require.NoError(t, err)
	return len(rec)
}

func TestDecode_SingleItemRoundTrip(t *testing.T) {
	it := decodeOne(t, spicedNuts)

	assert.Equal(t, domain.ID(7400002), it.ID)
	assert.Equal(t, "Spiced Nuts", it.Name)
	require.NotNil(t, it.DefaultPrice)
	assert.True(t, it.DefaultPrice.Equal(domain.MustMoney("8.00")))
	require.NotNil(t, it.ItemGroup)
	assert.Equal(t, domain.ID(125), *it.ItemGroup)
	assert.Equal(t, []domain.PrinterRef{{ID: 2, Primary: true}, {ID: 3}, {ID: 6}}, it.PrinterLogicals)
	assert.False(t, it.StockItem)
	assert.True(t, it.AllowPriceOverride)
	assert.Nil(t, it.SecurityLevel)
	assert.Nil(t, it.Cost)
	assert.Empty(t, it.SKU)

	assert.Equal(t, spicedNuts, EncodeItem(it))
}

func TestEncodeItem_WeightTare(t *testing.T) {
	line := strings.Replace(spicedNuts, `{1,$8.00}, 103, 1, 1, 0, 0, 0, 0,`, `{1,$8.00}, 103, 1, 1, 0, 0, 1, 0.50,`, 1)
	it := decodeOne(t, line)
	assert.True(t, it.WeightTare.Equal(domain.MustMoney("0.5")))
	assert.Equal(t, line, EncodeItem(it))

	it.WeightTare = domain.MustMoney("0.125")
	assert.Contains(t, EncodeItem(it), ", 1, 0.125, {}")

	it.WeightTare = domain.MustMoney("0")
	assert.Contains(t, EncodeItem(it), ", 1, 0, {}")
}

func TestDecode_StructuralErrors(t *testing.T) {
	t.Run("field count", func(t *testing.T) {
		input := spicedNuts + "\n" + `"A", 1, "Short"` + "\n"
		_, err := Decode(strings.NewReader(input))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFieldCount)
		var fce *FieldCountError
		require.ErrorAs(t, err, &fce)
		assert.Equal(t, 2, fce.Line)
		assert.Equal(t, 3, fce.Got)
	})

	t.Run("illegal sentinel", func(t *testing.T) {
		input := strings.Replace(spicedNuts, "Nuts", "Nuts␟", 1)
		_, err := Decode(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrIllegalSentinel)
	})
}

func TestDecode_SoftErrorsSkipRecord(t *testing.T) {
	badMarker := strings.Replace(spicedNuts, `"A"`, `"D"`, 1)
	badPrice := strings.Replace(strings.Replace(spicedNuts, "7400002", "7400003", 1), "$8.00", "$8.x0", 1)
	input := strings.Join([]string{badMarker, badPrice, spicedNuts}, "\n")

	batch, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Records)
	assert.Equal(t, 2, batch.Skipped)
	require.Len(t, batch.Items, 1)
	require.Len(t, batch.Diagnostics, 2)
	assert.Equal(t, 1, batch.Diagnostics[0].Line)
	assert.Equal(t, 1, batch.Diagnostics[0].Field)
	assert.Equal(t, 2, batch.Diagnostics[1].Line)
	assert.Equal(t, 7, batch.Diagnostics[1].Field)
}

func TestEscape_BracedCommas(t *testing.T) {
	lines := []string{
		spicedNuts,
		strings.Replace(spicedNuts, "{1,$8.00}", "{1,$8.00,3,$9.50,4,$10.00}", 1),
		strings.Replace(spicedNuts, "{}, {2,1", "{11,1,12,2}, {2,1", 1),
	}
	for _, line := range lines {
		semicolons := braceCommasTo(line, ";")
		assert.Equal(t, RecordFields, splitCount(t, line))
		assert.Equal(t, splitCount(t, semicolons), splitCount(t, line))
	}
}

func braceCommasTo(line, repl string) string {
	var b strings.Builder
	in := false
	for _, r := range line {
		switch {
		case r == '{':
			in = true
		case r == '}':
			in = false
		case r == ',' && in:
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestEscape_QuotedBraces(t *testing.T) {
	line := strings.Replace(spicedNuts, `"Spiced Nuts", "Spiced"`, `"Nuts {salted, roasted}", "Spiced"`, 1)
	it := decodeOne(t, line)
	assert.Equal(t, "Nuts {salted, roasted}", it.Name)

	open := strings.Replace(spicedNuts, `"Spiced Nuts", "Spiced"`, `"Left { brace", "Spiced"`, 1)
	it = decodeOne(t, open)
	assert.Equal(t, "Left { brace", it.Name)
}

func TestBraceLists_RoundTrip(t *testing.T) {
	t.Run("prices", func(t *testing.T) {
		def := domain.MoneyPtr(domain.MustMoney("8.00"))
		prices := []domain.ItemPrice{{LevelID: 2, Price: domain.MustMoney("9.50")}, {LevelID: 5, Price: domain.MustMoney("0.25")}}
		enc := EncodePrices(def, prices)
		assert.Equal(t, "{1,$8.00,3,$9.50,6,$0.25}", enc)

		gotDef, gotPrices, err := DecodePrices(enc)
		require.NoError(t, err)
		assert.True(t, gotDef.Equal(*def))
		require.Len(t, gotPrices, 2)
		for i := range prices {
			assert.Equal(t, prices[i].LevelID, gotPrices[i].LevelID)
			assert.True(t, prices[i].Price.Equal(gotPrices[i].Price))
		}
		assert.Equal(t, `""`, EncodePrices(nil, nil))
	})

	t.Run("choice groups", func(t *testing.T) {
		in := []domain.ChoiceGroupRef{{ID: 11, Sequence: 1}, {ID: 4, Sequence: 2}}
		got, err := DecodeChoiceGroups(EncodeChoiceGroups(in))
		require.NoError(t, err)
		assert.Equal(t, in, got)
		assert.Equal(t, "{}", EncodeChoiceGroups(nil))
	})

	t.Run("printers", func(t *testing.T) {
		in := []domain.PrinterRef{{ID: 2, Primary: true}, {ID: 3}}
		enc := EncodePrinters(in)
		assert.Equal(t, "{2,1,3,0}", enc)
		got, err := DecodePrinters(enc)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("store levels", func(t *testing.T) {
		in := []domain.ID{4, 1, 9}
		got, err := DecodeIDList(EncodeIDList(in))
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("odd pairs", func(t *testing.T) {
		_, err := DecodePrinters("{2,1,3}")
		assert.Error(t, err)
	})
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "Y", "YES", "TRUE", "yes", "y", "true"} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"0", "", "N", "True", "2"} {
		assert.False(t, ParseBool(s), s)
	}
}

func TestIngest_ReferenceCompletion(t *testing.T) {
	cat := catalog.New()
	rep, err := Ingest(cat, strings.NewReader(spicedNuts+"\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Imported)
	assert.Zero(t, rep.Skipped)
	assert.Empty(t, rep.Missing)

	g, ok := cat.ItemGroup(125)
	require.True(t, ok)
	assert.Equal(t, "Item Group 125", g.Name)
	assert.True(t, g.Range.Contains(7400002))

	tg, ok := cat.TaxGroup(1)
	require.True(t, ok)
	assert.Equal(t, "Tax Group 1", tg.Name)

	name, ok := cat.ResolveName(domain.KindPrinterLogical, 6)
	require.True(t, ok)
	assert.Equal(t, "Printer Logical 6", name)
	assert.Equal(t, 3, rep.CreatedOf(domain.KindPrinterLogical))

	it, _ := cat.Item(7400002)
	assert.NoError(t, domain.Validate(it, cat))
}

func TestIngest_MissingOutOfRange(t *testing.T) {
	line := strings.Replace(spicedNuts, "{2,1,3,0,6,0}", "{2,1,30,0}", 1)
	cat := catalog.New()
	rep, err := Ingest(cat, strings.NewReader(line))
	require.NoError(t, err)
	assert.Equal(t, []domain.Ref{{Kind: domain.KindPrinterLogical, ID: 30}}, rep.Missing)
	assert.False(t, cat.Has(domain.Ref{Kind: domain.KindPrinterLogical, ID: 30}))
}

func TestEncoder_GroupStartSentinel(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(domain.ItemGroup{ID: 125, Name: "Entree", Range: domain.IDRange{Start: 7400000, End: 7500000}}))
	pasta := domain.NewDraftItem("Pasta")
	pasta.ID = 7400002
	pasta.ItemGroup = domain.IDPtr(125)
	require.NoError(t, cat.Insert(pasta))

	var buf bytes.Buffer
	n, err := NewEncoder(&buf).WriteCatalog(cat)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `"A", 7400000, "****Start**** Entree", "Pasta", `))
	assert.True(t, strings.HasPrefix(lines[1], `"A", 7400002, "Pasta", "Pasta", `))

	batch, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, []GroupMarker{{GroupID: 125, Start: 7400000, Name: "Entree"}}, batch.Markers)
}

func TestExportOrder(t *testing.T) {
	mk := func(id domain.ID, group *domain.ID) domain.Item {
		it := domain.NewDraftItem("x")
		it.ID = id
		it.ItemGroup = group
		return it
	}
	items := []domain.Item{mk(205, domain.IDPtr(2)), mk(101, domain.IDPtr(1)), mk(150, nil), mk(201, domain.IDPtr(2)), mk(900, domain.IDPtr(9))}
	groups := map[domain.ID]domain.ItemGroup{
		1: {ID: 1, Name: "One", Range: domain.IDRange{Start: 100, End: 200}},
		2: {ID: 2, Name: "Two", Range: domain.IDRange{Start: 200, End: 300}},
	}

	var ids []domain.ID
	for _, it := range ExportOrder(items, groups) {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []domain.ID{100, 101, 200, 201, 205}, ids)

	ids = ids[:0]
	for _, it := range ExportOrder(items, nil) {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []domain.ID{101, 150, 201, 205, 900}, ids)
}

func TestEncoder_CRLF(t *testing.T) {
	it := decodeOne(t, spicedNuts)
	var buf bytes.Buffer
	enc := NewEncoder(&buf, WithLineEnding(CRLF))
	require.NoError(t, enc.Encode(it))
	require.NoError(t, enc.Flush())
	assert.Equal(t, spicedNuts+"\r\n", buf.String())

	again := decodeOne(t, strings.TrimSuffix(buf.String(), "\n"))
	assert.True(t, it.Equal(again))
}

func TestParseLineEnding(t *testing.T) {
	for _, eol := range []LineEnding{LF, CRLF} {
		got, err := ParseLineEnding(eol.Name())
		require.NoError(t, err)
		assert.Equal(t, eol, got)
	}
	_, err := ParseLineEnding("cr")
	assert.Error(t, err)
}

func TestCatalog_RoundTrip(t *testing.T) {
	full := domain.NewDraftItem(`Chef's "Special"`)
	full.ID = 42
	full.Button2 = "Special"
	full.PrinterText = "CHEF SPECIAL"
	full.DefaultPrice = domain.MoneyPtr(domain.MustMoney("12.50"))
	full.ItemPrices = []domain.ItemPrice{{LevelID: 2, Price: domain.MustMoney("11.00")}}
	full.PriceLevels = []domain.ID{2}
	full.ProductClass = domain.IDPtr(7)
	full.RevenueCategory = domain.IDPtr(3)
	full.TaxGroup = domain.IDPtr(1)
	full.SecurityLevel = domain.IDPtr(2)
	full.ReportCategory = domain.IDPtr(4)
	full.UseWeight = true
	full.WeightTare = domain.MustMoney("0.25")
	full.SKU = "SKU-1"
	full.BarGunCode = "0123456789"
	full.Cost = domain.MoneyPtr(domain.MustMoney("3.10"))
	full.AskPrice = true
	full.TaxIncluded = true
	full.CustomerReceipt = "Special, today only"
	full.ChoiceGroups = []domain.ChoiceGroupRef{{ID: 5, Sequence: 1}, {ID: 6, Sequence: 2}}
	full.PrinterLogicals = []domain.PrinterRef{{ID: 1}, {ID: 4, Primary: true}}
	full.StorePriceLevels = []domain.ID{8}
	full.Covers = 2
	full.StoreID = 17
	full.ImageID = 3
	full.KitchenVideo = "Grill"
	full.KDSDepartment = 1
	full.KDSCategory = "Mains"
	full.KDSCookTime = 600
	full.LanguageISO = "en"
	full.StockItem = true

	water := domain.NewDraftItem("Water")
	water.ID = 43

	src := catalog.New()
	require.NoError(t, src.Insert(full))
	require.NoError(t, src.Insert(water))

	var buf bytes.Buffer
	_, err := NewEncoder(&buf).WriteCatalog(src)
	require.NoError(t, err)

	dst := catalog.New()
	rep, err := Ingest(dst, &buf)
	require.NoError(t, err)
	require.Empty(t, rep.Diagnostics)
	assert.Equal(t, 2, rep.Imported)

	for _, want := range src.Items() {
		got, ok := dst.Item(want.ID)
		require.True(t, ok)
		assert.True(t, want.Equal(got), "item %d differs after round trip", want.ID)
	}
}
