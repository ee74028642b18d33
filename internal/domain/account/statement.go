package account

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntrySource tells which document produced a statement line
type EntrySource string

const (
	SourceInvoice    EntrySource = "INVOICE"
	SourceCollection EntrySource = "COLLECTION"
)

// StatementLine is one derived row of an account statement.
// A zero Date means the source document had no date; such rows sort last.
type StatementLine struct {
	AccountID    uuid.UUID       `json:"account_id"`
	AccountName  string          `json:"account_name"`
	Source       EntrySource     `json:"source"`
	DocumentID   uuid.UUID       `json:"document_id"`
	DocumentKind string          `json:"document_kind"`
	DocumentNo   string          `json:"document_no"`
	Description  string          `json:"description,omitempty"`
	Date         time.Time       `json:"date"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Balance      decimal.Decimal `json:"balance"`
}

// StatementSummary totals a statement
type StatementSummary struct {
	TotalDebit   decimal.Decimal `json:"total_debit"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	LineCount    int             `json:"line_count"`
}

// AccountSubtotal totals the lines of one account within a statement
type AccountSubtotal struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// Statement is a chronologically ordered running-balance view
type Statement struct {
	Lines     []StatementLine   `json:"lines"`
	Summary   StatementSummary  `json:"summary"`
	Subtotals []AccountSubtotal `json:"subtotals"`
}

// DueDateFor returns date plus the days of term, or nil for an undated document
func DueDateFor(date time.Time, term string) *time.Time {
	if date.IsZero() {
		return nil
	}
	due := date.AddDate(0, 0, DueDays(term))
	return &due
}

// BuildStatement orders lines by date (undated last, ties kept in input
// order) and folds the running balance as previous + debit - credit.
// Subtotals follow the order in which accounts first appear in lines.
func BuildStatement(lines []StatementLine) Statement {
	ordered := make([]StatementLine, len(lines))
	copy(ordered, lines)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Date, ordered[j].Date
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})

	summary := StatementSummary{
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
		FinalBalance: decimal.Zero,
		LineCount:    len(ordered),
	}
	subtotals := make([]AccountSubtotal, 0)
	index := make(map[uuid.UUID]int)

	balance := decimal.Zero
	for i := range ordered {
		line := &ordered[i]
		balance = balance.Add(line.Debit).Sub(line.Credit)
		line.Balance = balance

		summary.TotalDebit = summary.TotalDebit.Add(line.Debit)
		summary.TotalCredit = summary.TotalCredit.Add(line.Credit)

		pos, ok := index[line.AccountID]
		if !ok {
			pos = len(subtotals)
			index[line.AccountID] = pos
			subtotals = append(subtotals, AccountSubtotal{
				AccountID:   line.AccountID,
				AccountName: line.AccountName,
				TotalDebit:  decimal.Zero,
				TotalCredit: decimal.Zero,
				Balance:     decimal.Zero,
			})
		}
		st := &subtotals[pos]
		st.TotalDebit = st.TotalDebit.Add(line.Debit)
		st.TotalCredit = st.TotalCredit.Add(line.Credit)
		st.Balance = st.TotalDebit.Sub(st.TotalCredit)
	}
	summary.FinalBalance = balance

	return Statement{
		Lines:     ordered,
		Summary:   summary,
		Subtotals: subtotals,
	}
}
