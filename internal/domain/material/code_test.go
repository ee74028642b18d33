package material

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseCode(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Çelik Boru 50mm", "CB50"},
		{"Bolt M8", "BM8"},
		{"Işık Bandı", "IBMLZ"},
		{"Su", "SMLZ"},
		{"Straße Ölçer Şerit", "SOS"},
		{"  ---  ", "MLZ"},
		{"paslanmaz vida 4x40 yıldız başlı", "PV440YB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseCode(tt.name))
		})
	}
}

func TestToASCII(t *testing.T) {
	assert.Equal(t, "Gunes Isigi", ToASCII("Güneş Işığı"))
	assert.Equal(t, "Strasse", ToASCII("Straße"))
}

type codeSet map[string]bool

func (s codeSet) exists(_ context.Context, code string) (bool, error) {
	return s[code], nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerateCode(t *testing.T) {
	ctx := context.Background()

	t.Run("same input and store give the same code", func(t *testing.T) {
		store := codeSet{}
		first, err := GenerateCode(ctx, "Çelik Boru", store.exists, fixedNow)
		require.NoError(t, err)
		second, err := GenerateCode(ctx, "Çelik Boru", store.exists, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, "CBMLZ", first)
	})

	t.Run("appends counter after a collision", func(t *testing.T) {
		store := codeSet{"CBMLZ": true}
		code, err := GenerateCode(ctx, "Çelik Boru", store.exists, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, "CBMLZ1", code)

		store[code] = true
		code, err = GenerateCode(ctx, "Çelik Boru", store.exists, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, "CBMLZ2", code)
	})

	t.Run("falls back to timestamp suffix", func(t *testing.T) {
		store := codeSet{"ABC": true}
		for i := 1; i <= 99; i++ {
			store["ABC"+strconv.Itoa(i)] = true
		}
		code, err := GenerateCode(ctx, "Alpha Beta Charlie", store.exists, fixedNow)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(code, "ABC-"))
		assert.False(t, store[code])
	})

	t.Run("fails when every candidate is taken", func(t *testing.T) {
		all := func(context.Context, string) (bool, error) { return true, nil }
		_, err := GenerateCode(ctx, "Alpha Beta Charlie", all, fixedNow)
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	})

	t.Run("propagates lookup errors", func(t *testing.T) {
		boom := errors.New("db down")
		failing := func(context.Context, string) (bool, error) { return false, boom }
		_, err := GenerateCode(ctx, "Bolt", failing, fixedNow)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("requires a name", func(t *testing.T) {
		_, err := GenerateCode(ctx, "  ", codeSet{}.exists, fixedNow)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestLegacyBaseCode(t *testing.T) {
	assert.Equal(t, "CB", LegacyBaseCode("cb12"))
	assert.Equal(t, "CB", LegacyBaseCode("CB"))
	assert.Equal(t, "", LegacyBaseCode("123"))
}

func TestPickLegacyMatch(t *testing.T) {
	candidates := []Material{{Code: "CBX"}, {Code: "CB3"}, {Code: "CB"}}
	assert.Equal(t, "CB", PickLegacyMatch("CB", candidates).Code)

	candidates = []Material{{Code: "CBX"}, {Code: "CB3"}, {Code: "CB4"}}
	assert.Equal(t, "CB3", PickLegacyMatch("CB", candidates).Code)

	assert.Nil(t, PickLegacyMatch("CB", []Material{{Code: "CBX"}}))
	assert.Nil(t, PickLegacyMatch("CB", nil))
}
