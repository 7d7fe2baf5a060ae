package fidji

import (
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashCoder(t *testing.T) {
	coder := NewHashCoder()

	t.Run("known digests", func(t *testing.T) {
		require.Equal(t, "33fd65bcd805f16896ab57639146f6b2", coder.Hash("building", "B1", "U1"))
		require.Equal(t, "aaf77c3c4713a381932a063d47f681b1", coder.UnitHash("AST-1", "PRT-1"))
	})

	t.Run("leading zeros are stripped", func(t *testing.T) {
		// md5("buildingB5U1") = 07d20799967e86d581f128e46d4ede00
		h := coder.UnitHash("B5", "U1")
		require.Equal(t, "7d20799967e86d581f128e46d4ede00", h)
		require.Len(t, h, 31)
	})

	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, coder.UnitHash("B1", "U1"), NewHashCoder().UnitHash("B1", "U1"))
		require.NotEqual(t, coder.UnitHash("B1", "U1"), coder.UnitHash("B1", "U2"))
	})

	t.Run("inputs are concatenated without separator", func(t *testing.T) {
		require.Equal(t, coder.Hash("building", "B1", "U1"), coder.Hash("buildingB", "1U", "1"))
	})

	t.Run("fallback without digest", func(t *testing.T) {
		require.Equal(t, "building-B1-U1", FallbackHashCoder().UnitHash("B1", "U1"))
		var zero HashCoder
		require.Equal(t, "a-b-c", zero.Hash("a", "b", "c"))
	})
}

func TestPathMatcher(t *testing.T) {
	var m PathMatcher
	require.Equal(t, "", m.Path())
	require.Equal(t, 0, m.Depth())

	require.Equal(t, "FIDJI", m.Push("FIDJI"))
	require.Equal(t, "FIDJI/ASTl", m.Push("ASTl"))
	require.Equal(t, "FIDJI/ASTl/AST00", m.Push("AST00"))
	require.Equal(t, 3, m.Depth())

	name, ok := m.Pop()
	require.True(t, ok)
	require.Equal(t, "AST00", name)
	require.Equal(t, "FIDJI/ASTl", m.Path())

	m.Pop()
	m.Pop()
	_, ok = m.Pop()
	require.False(t, ok)
	require.Equal(t, 0, m.Depth())
}

func TestJoin(t *testing.T) {
	require.Equal(t, "FIDJI/gHOl/gHO00", Join(ElemRoot, ElemCompanyList, ElemCompany))
	require.Equal(t, "FIDJI", Join(ElemRoot))
}

func TestValues(t *testing.T) {
	t.Run("dates", func(t *testing.T) {
		d, err := ParseDate(" 2021-07-15\n")
		require.NoError(t, err)
		require.Equal(t, time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC), d)
		require.Equal(t, "2021-07-15", FormatDate(d))

		_, err = ParseDate("15.07.2021")
		require.Error(t, err)
	})

	t.Run("reals", func(t *testing.T) {
		f, err := ParseReal("2.5")
		require.NoError(t, err)
		require.Equal(t, 2.5, f)

		_, err = ParseReal("two")
		require.Error(t, err)

		require.Equal(t, "3.0", FormatReal(3))
		require.Equal(t, "2.5", FormatReal(2.5))
		require.Equal(t, "120.75", FormatReal(120.75))
		require.Equal(t, "0.0", FormatReal(0))
	})

	t.Run("real notation switch", func(t *testing.T) {
		for want, f := range map[string]float64{
			"9999999.0":    9999999,
			"1.0E7":        1e7,
			"1.23456789E7": 12345678.9,
			"-2.5E8":       -2.5e8,
			"0.001":        0.001,
			"1.0E-4":       0.0001,
			"1.5E-4":       0.00015,
			"-0.0":         math.Copysign(0, -1),
			"NaN":          math.NaN(),
			"Infinity":     math.Inf(1),
		} {
			require.Equal(t, want, FormatReal(f), want)
		}
	})

	t.Run("truncated ints", func(t *testing.T) {
		for in, want := range map[string]int{"3": 3, "3.0": 3, "3.9": 3, "-1.5": -1} {
			n, err := ParseTruncatedInt(in)
			require.NoError(t, err, in)
			require.Equal(t, want, n, in)
		}
		_, err := ParseTruncatedInt("x")
		require.Error(t, err)
		require.Equal(t, "7", FormatInt(7))
	})
}

func TestError(t *testing.T) {
	t.Run("matches kind and cause", func(t *testing.T) {
		err := Errorf(ErrStream, "FIDJI/ASTl", "close", io.ErrClosedPipe)
		require.ErrorIs(t, err, ErrStream)
		require.ErrorIs(t, err, io.ErrClosedPipe)
		require.False(t, errors.Is(err, ErrMalformedXML))
		require.Equal(t, "stream_failure at FIDJI/ASTl (close): io: read/write on closed pipe", err.Error())
	})

	t.Run("without cause", func(t *testing.T) {
		err := Errorf(ErrMissingAttribute, "FIDJI/ASTl/AST00", "id", nil)
		require.ErrorIs(t, err, ErrMissingAttribute)
		require.Equal(t, "missing_required_attribute at FIDJI/ASTl/AST00 (id)", err.Error())

		var fe *Error
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "id", fe.Detail)
	})
}
