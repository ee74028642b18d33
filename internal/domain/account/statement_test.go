package account

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildStatement(t *testing.T) {
	acc := uuid.New()
	other := uuid.New()
	lines := []StatementLine{
		{AccountID: acc, DocumentNo: "undated", Debit: decimal.NewFromInt(5), Credit: decimal.Zero},
		{AccountID: acc, DocumentNo: "c1", Date: day("2026-02-10"), Debit: decimal.Zero, Credit: decimal.NewFromInt(400)},
		{AccountID: acc, DocumentNo: "i1", Date: day("2026-02-01"), Debit: decimal.NewFromInt(1000), Credit: decimal.Zero},
		{AccountID: other, DocumentNo: "i2", Date: day("2026-02-10"), Debit: decimal.NewFromInt(50), Credit: decimal.Zero},
	}

	st := BuildStatement(lines)

	require.Len(t, st.Lines, 4)
	order := []string{st.Lines[0].DocumentNo, st.Lines[1].DocumentNo, st.Lines[2].DocumentNo, st.Lines[3].DocumentNo}
	// ties on 2026-02-10 keep input order; undated goes last
	assert.Equal(t, []string{"i1", "c1", "i2", "undated"}, order)

	assert.True(t, st.Lines[0].Balance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, st.Lines[1].Balance.Equal(decimal.NewFromInt(600)))
	assert.True(t, st.Lines[2].Balance.Equal(decimal.NewFromInt(650)))
	assert.True(t, st.Lines[3].Balance.Equal(decimal.NewFromInt(655)))

	for i := 1; i < len(st.Lines); i++ {
		prev, cur := st.Lines[i-1], st.Lines[i]
		assert.True(t, cur.Balance.Equal(prev.Balance.Add(cur.Debit).Sub(cur.Credit)))
	}

	assert.True(t, st.Summary.TotalDebit.Equal(decimal.NewFromInt(1055)))
	assert.True(t, st.Summary.TotalCredit.Equal(decimal.NewFromInt(400)))
	assert.True(t, st.Summary.FinalBalance.Equal(st.Summary.TotalDebit.Sub(st.Summary.TotalCredit)))

	require.Len(t, st.Subtotals, 2)
	assert.Equal(t, acc, st.Subtotals[0].AccountID)
	assert.True(t, st.Subtotals[0].Balance.Equal(decimal.NewFromInt(605)))
	assert.True(t, st.Subtotals[1].Balance.Equal(decimal.NewFromInt(50)))
}

func TestBuildStatement_Empty(t *testing.T) {
	st := BuildStatement(nil)
	assert.Empty(t, st.Lines)
	assert.True(t, st.Summary.FinalBalance.IsZero())
	assert.Empty(t, st.Subtotals)
}

func TestDueDateFor(t *testing.T) {
	due := DueDateFor(day("2026-01-31"), "Cash")
	require.NotNil(t, due)
	assert.Equal(t, day("2026-01-31"), *due)

	due = DueDateFor(day("2026-01-31"), "60")
	require.NotNil(t, due)
	assert.Equal(t, day("2026-04-01"), *due)

	assert.Nil(t, DueDateFor(time.Time{}, "30"))
}
