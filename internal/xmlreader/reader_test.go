package xmlreader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/fidji-converter/internal/fidji"
	"github.com/ginjaninja78/fidji-converter/internal/model"
)

const portfolio = `<?xml version="1.0" encoding="utf-8"?>
<FIDJI version="2.0" date="2021-08-01" situation="2021-07-15" xmlns="http://www.format-Fidji.org/XMLSchema-2.0">
  <ASTl>
    <AST00 id="B1" name="Tower">
      <AST70>R-B1</AST70>
      <AST22gADl>
        <gAD00>
          <gAD01>Main Street 1</gAD01>
          <gAD04>10115</gAD04>
          <gAD05>Berlin</gAD05>
        </gAD00>
      </AST22gADl>
      <AST24PRTl>
        <PRT00 id="U1">
          <PRT25>R-U1</PRT25>
          <PRT24>2.5</PRT24>
          <PRT18>3</PRT18>
          <PRT21>3.0</PRT21>
          <PRT05>120.75</PRT05>
        </PRT00>
        <PRT00 id="U2"/>
      </AST24PRTl>
      <AST25LEAl>
        <LEA00 id="L1">
          <LEA38>2020-01-01</LEA38>
          <LEA05>2025-12-31</LEA05>
          <LEA07>2027-12-31</LEA07>
          <LEA22aLPl>
            <aLP00 idPRT="U1"/>
          </LEA22aLPl>
        </LEA00>
      </AST25LEAl>
      <AST99>
        <PRT00 id="ignored"/>
      </AST99>
    </AST00>
  </ASTl>
  <gHOl>
    <gHO00 id="C1" name="Holding">
      <gHO02 idRef-AST="B1"/>
      <gHO02 idRef-AST="B9"/>
    </gHO00>
  </gHOl>
</FIDJI>`

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReadPortfolio(t *testing.T) {
	created := date(2022, 1, 2)
	opts := DefaultOptions()
	opts.Creator = "tests"
	opts.Now = func() time.Time { return created }

	p := NewParser(strings.NewReader(portfolio), opts)
	c, err := p.Parse()
	require.NoError(t, err)

	t.Run("meta", func(t *testing.T) {
		require.Equal(t, model.Meta{Format: "XML", Version: "1-0.6.2", Creator: "tests", Created: created}, c.Meta)
	})

	require.Len(t, c.Periods, 1)
	period := c.Periods["2021-7"]
	require.NotNil(t, period)

	t.Run("period", func(t *testing.T) {
		require.Equal(t, date(2021, 7, 1), period.From)
		require.Equal(t, date(2021, 7, 15), period.To)
		require.Equal(t, "2021-7", period.Identifier)
		require.Equal(t, model.Months(1), period.PeriodType)
		require.Equal(t, model.PeriodValueTypeOther, period.ValueType)
	})

	company := period.Data.Companies["C1"]
	require.NotNil(t, company)
	prop := company.Properties["B1"]
	require.NotNil(t, prop)

	t.Run("company and references", func(t *testing.T) {
		require.Equal(t, "Holding", company.Label)
		require.Len(t, company.Properties, 2)
		require.Contains(t, company.Properties, "B9")
		require.Nil(t, company.Properties["B9"])
	})

	t.Run("asset becomes property and building", func(t *testing.T) {
		require.Equal(t, "Tower", prop.Label)
		require.Equal(t, "R-B1", prop.ObjectIDReceiver)
		require.Equal(t, &model.Address{Street: "Main Street 1", Zip: "10115", City: "Berlin"}, prop.Address)

		b := prop.Buildings["B1"]
		require.NotNil(t, b)
		require.Equal(t, "R-B1", b.ObjectIDReceiver)
		require.Same(t, prop.Address, b.Address)
		require.Len(t, b.Units, 2)
	})

	t.Run("units", func(t *testing.T) {
		u := prop.Buildings["B1"].Units["U1"]
		require.Equal(t, "R-U1", u.ObjectIDReceiver)
		require.Equal(t, 2.5, *u.NumberOfRooms)
		require.Equal(t, 3, *u.LettableUnits)
		require.Equal(t, &model.Area{Value: 120.75, Measurement: model.AreaMeasurementSQM, Type: model.AreaTypeNotSpecified}, u.LettableArea)
		require.Equal(t, "3", u.Address.Floor)
		require.Equal(t, model.AreaMeasurementSQM, u.AreaMeasurement)
		require.Equal(t, "33fd65bcd805f16896ab57639146f6b2", u.Hash)

		empty := prop.Buildings["B1"].Units["U2"]
		require.Nil(t, empty.NumberOfRooms)
		require.Nil(t, empty.LettableUnits)
		require.Nil(t, empty.LettableArea)
		require.Nil(t, empty.Address)
	})

	t.Run("leases link units by hash", func(t *testing.T) {
		l := prop.Leases["L1"]
		require.NotNil(t, l)
		require.Equal(t, date(2020, 1, 1), l.BeginRentPayment)
		require.Equal(t, date(2025, 12, 31), l.ContractCompletionDate)
		require.Equal(t, date(2027, 12, 31), l.EndOptionDate)
		require.Len(t, l.LeasedUnits, 1)

		hash := prop.Buildings["B1"].Units["U1"].Hash
		require.Contains(t, l.LeasedUnits, hash)

		id, ok := prop.UnitIDByHash(hash)
		require.True(t, ok)
		require.Equal(t, "U1", id)
	})

	t.Run("unknown elements are skipped", func(t *testing.T) {
		require.NotContains(t, prop.Buildings["B1"].Units, "ignored")
	})

	t.Run("assets in document order", func(t *testing.T) {
		require.Equal(t, []*model.Property{prop}, p.Assets())
	})
}

func TestReadAlternateUnitList(t *testing.T) {
	doc := `<FIDJI situation="2021-12-31"><ASTl><AST00 id="AST-1">
<AST23PRTl><PRT00 id="PRT-1"><PRT24>4</PRT24></PRT00></AST23PRTl>
</AST00></ASTl><gHOl><gHO00 id="C"><gHO02 idRef-AST="AST-1"/></gHO00></gHOl></FIDJI>`

	c, err := Read(strings.NewReader(doc))
	require.NoError(t, err)

	u := c.Periods["2021-12"].Data.Companies["C"].Properties["AST-1"].Buildings["AST-1"].Units["PRT-1"]
	require.NotNil(t, u)
	require.Equal(t, 4.0, *u.NumberOfRooms)
	require.Equal(t, "aaf77c3c4713a381932a063d47f681b1", u.Hash)
}

func TestReadFallbackHash(t *testing.T) {
	doc := `<FIDJI situation="2021-07-15"><ASTl><AST00 id="B1"><AST24PRTl><PRT00 id="U1"/></AST24PRTl></AST00></ASTl>
<gHOl><gHO00 id="C1"><gHO02 idRef-AST="B1"/></gHO00></gHOl></FIDJI>`

	c, err := ReadWithOptions(strings.NewReader(doc), Options{Hash: fidji.FallbackHashCoder()})
	require.NoError(t, err)

	u := c.Periods["2021-7"].Data.Companies["C1"].Properties["B1"].Buildings["B1"].Units["U1"]
	require.Equal(t, "building-B1-U1", u.Hash)
}

func TestResolveProperties(t *testing.T) {
	doc := `<FIDJI situation="2021-07-15"><ASTl>
<AST00 id="B1" name="first"/>
<AST00 id="B1" name="second"/>
<AST00 id="B2" name="orphan"/>
</ASTl><gHOl>
<gHO00 id="C2"><gHO02 idRef-AST="B1"/></gHO00>
<gHO00 id="C1"><gHO02 idRef-AST="B1"/><gHO02 idRef-AST="B3"/></gHO00>
<gHO00 id="C3"><gHO02 idRef-AST="B1"/></gHO00>
</gHOl></FIDJI>`

	p := NewParser(strings.NewReader(doc), DefaultOptions())
	c, err := p.Parse()
	require.NoError(t, err)
	companies := c.Periods["2021-7"].Data.Companies

	// Assets go to waiting companies in ascending id order.
	require.Equal(t, "first", companies["C1"].Properties["B1"].Label)
	require.Equal(t, "second", companies["C2"].Properties["B1"].Label)
	require.Nil(t, companies["C3"].Properties["B1"])
	require.Nil(t, companies["C1"].Properties["B3"])
	require.Len(t, p.Assets(), 3)
}

func TestReadCharset(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<FIDJI situation=\"2021-07-15\"><ASTl><AST00 id=\"B1\"><AST22gADl><gAD00>" +
		"<gAD05>Orl\xe9ans</gAD05></gAD00></AST22gADl></AST00></ASTl>" +
		"<gHOl><gHO00 id=\"C1\"><gHO02 idRef-AST=\"B1\"/></gHO00></gHOl></FIDJI>"

	c, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "Orléans", c.Periods["2021-7"].Data.Companies["C1"].Properties["B1"].Address.City)
}

func TestReadErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		kind error
		path string
	}{
		{
			name: "empty input",
			doc:  "",
			kind: fidji.ErrMalformedXML,
		},
		{
			name: "other root",
			doc:  `<OTHER situation="2021-07-15"/>`,
			kind: fidji.ErrMalformedXML,
		},
		{
			name: "mismatched tags",
			doc:  `<FIDJI situation="2021-07-15"><ASTl></FIDJI>`,
			kind: fidji.ErrMalformedXML,
		},
		{
			name: "truncated document",
			doc:  `<FIDJI situation="2021-07-15"><ASTl>`,
			kind: fidji.ErrMalformedXML,
		},
		{
			name: "child inside text element",
			doc:  `<FIDJI situation="2021-07-15"><ASTl><AST00 id="B1"><AST70><x/></AST70></AST00></ASTl></FIDJI>`,
			kind: fidji.ErrMalformedXML,
			path: "FIDJI/ASTl/AST00/AST70",
		},
		{
			name: "unsupported version",
			doc:  `<FIDJI version="1.3" situation="2021-07-15"/>`,
			kind: fidji.ErrUnsupportedVersion,
			path: "FIDJI",
		},
		{
			name: "missing situation",
			doc:  `<FIDJI version="2.0"/>`,
			kind: fidji.ErrMissingAttribute,
			path: "FIDJI",
		},
		{
			name: "bad situation",
			doc:  `<FIDJI situation="July"/>`,
			kind: fidji.ErrUnparseableValue,
			path: "FIDJI",
		},
		{
			name: "asset without id",
			doc:  `<FIDJI situation="2021-07-15"><ASTl><AST00 name="x"/></ASTl></FIDJI>`,
			kind: fidji.ErrMissingAttribute,
			path: "FIDJI/ASTl/AST00",
		},
		{
			name: "leased unit without reference",
			doc: `<FIDJI situation="2021-07-15"><ASTl><AST00 id="B1"><AST25LEAl><LEA00 id="L1">
<LEA22aLPl><aLP00/></LEA22aLPl></LEA00></AST25LEAl></AST00></ASTl></FIDJI>`,
			kind: fidji.ErrMissingAttribute,
			path: "FIDJI/ASTl/AST00/AST25LEAl/LEA00/LEA22aLPl/aLP00",
		},
		{
			name: "bad lease date",
			doc: `<FIDJI situation="2021-07-15"><ASTl><AST00 id="B1"><AST25LEAl><LEA00 id="L1">
<LEA38>01/01/2020</LEA38></LEA00></AST25LEAl></AST00></ASTl></FIDJI>`,
			kind: fidji.ErrUnparseableValue,
			path: "FIDJI/ASTl/AST00/AST25LEAl/LEA00/LEA38",
		},
		{
			name: "bad room count",
			doc: `<FIDJI situation="2021-07-15"><ASTl><AST00 id="B1"><AST24PRTl><PRT00 id="U1">
<PRT24>many</PRT24></PRT00></AST24PRTl></AST00></ASTl></FIDJI>`,
			kind: fidji.ErrUnparseableValue,
			path: "FIDJI/ASTl/AST00/AST24PRTl/PRT00/PRT24",
		},
		{
			name: "company reference without id",
			doc:  `<FIDJI situation="2021-07-15"><gHOl><gHO00 id="C1"><gHO02/></gHO00></gHOl></FIDJI>`,
			kind: fidji.ErrMissingAttribute,
			path: "FIDJI/gHOl/gHO00/gHO02",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Read(strings.NewReader(tc.doc))
			require.Nil(t, c)
			require.ErrorIs(t, err, tc.kind)

			if tc.path != "" {
				var fe *fidji.Error
				require.ErrorAs(t, err, &fe)
				require.Equal(t, tc.path, fe.Path)
			}
		})
	}
}
