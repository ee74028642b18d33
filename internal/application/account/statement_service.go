package account

import (
	"context"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/collection"
	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DisplayRates converts amounts for display only. Rates may be stale.
type DisplayRates interface {
	// Rate returns how many units of currency one unit of the base currency buys
	Rate(ctx context.Context, currency string) (rate decimal.Decimal, stale bool, err error)
}

// StatementService builds running-balance statements from invoices and collections
type StatementService struct {
	accounts    account.AccountRepository
	invoices    invoice.InvoiceRepository
	collections collection.CollectionRepository
	rates       DisplayRates
	metrics     *telemetry.LedgerMetrics
}

// NewStatementService creates a new StatementService
func NewStatementService(
	accounts account.AccountRepository,
	invoices invoice.InvoiceRepository,
	collections collection.CollectionRepository,
) *StatementService {
	return &StatementService{
		accounts:    accounts,
		invoices:    invoices,
		collections: collections,
	}
}

// SetDisplayRates enables optional currency conversion of statement summaries
func (s *StatementService) SetDisplayRates(r DisplayRates) {
	s.rates = r
}

// SetMetrics records statement build durations on m
func (s *StatementService) SetMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// BuildStatement merges the selected accounts' invoices (debit) and
// collections (credit) in range, derives invoice due dates and folds the
// running balance. It takes no locks and never writes.
func (s *StatementService) BuildStatement(ctx context.Context, req StatementRequest) (*StatementResponse, error) {
	if len(req.AccountIDs) == 0 {
		return nil, shared.NewValidationError("at least one account is required")
	}
	rng := shared.DateRange{}
	if req.DateFrom != nil {
		rng.From = *req.DateFrom
	}
	if req.DateTo != nil {
		rng.To = *req.DateTo
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return nil, shared.NewValidationError("date_to cannot be before date_from")
	}
	kind := invoice.Kind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if kind != "" && !kind.IsValid() {
		return nil, shared.NewValidationError("invoice kind %q is not valid", req.Kind)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "build", attribute.Int("statement.accounts", len(req.AccountIDs)))
	defer span.End()
	started := time.Now()

	invoices, err := s.invoices.FindForStatement(ctx, invoice.Filter{
		AccountIDs: req.AccountIDs,
		Kind:       kind,
		Range:      rng,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	collections, err := s.collections.FindForStatement(ctx, collection.Filter{
		AccountIDs: req.AccountIDs,
		Range:      rng,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	live := s.loadAccounts(ctx, req.AccountIDs)

	lines := make([]account.StatementLine, 0, len(invoices)+len(collections))
	for _, accID := range req.AccountIDs {
		lines = append(lines, invoiceLines(accID, invoices, live[accID])...)
		lines = append(lines, collectionLines(accID, collections, live[accID])...)
	}

	resp := &StatementResponse{Statement: account.BuildStatement(lines)}
	if req.Currency != "" {
		resp.Converted = s.convert(ctx, resp.Summary, strings.ToUpper(req.Currency))
	}

	s.metrics.RecordStatementBuilt(ctx, len(req.AccountIDs), time.Since(started))
	logger.L(ctx).Debug("Statement built",
		zap.Int("accounts", len(req.AccountIDs)),
		zap.Int("lines", resp.Summary.LineCount),
		zap.String("final_balance", resp.Summary.FinalBalance.String()),
	)
	return resp, nil
}

// loadAccounts fetches the live accounts used for due-date enrichment.
// A failure is logged and leaves the affected accounts unenriched.
func (s *StatementService) loadAccounts(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*account.Account {
	out := make(map[uuid.UUID]*account.Account, len(ids))
	accounts, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		logger.L(ctx).Warn("Statement enrichment failed, due dates are best effort",
			zap.Error(err),
		)
		return out
	}
	for i := range accounts {
		out[accounts[i].ID] = &accounts[i]
	}
	for _, id := range ids {
		if out[id] == nil {
			logger.L(ctx).Warn("Statement account not found, due dates are best effort",
				zap.String("account_id", id.String()),
			)
		}
	}
	return out
}

func invoiceLines(accID uuid.UUID, invoices []invoice.Invoice, live *account.Account) []account.StatementLine {
	var lines []account.StatementLine
	for i := range invoices {
		inv := &invoices[i]
		if inv.AccountID == nil || *inv.AccountID != accID {
			continue
		}
		liveTerm := ""
		name := ""
		if live != nil {
			liveTerm = live.PaymentTerm
			name = live.LegalName
		}
		if name == "" && inv.AccountSnapshot != nil {
			name = inv.AccountSnapshot.LegalName
		}
		term := account.ResolveTerm(inv.LineTerm(), inv.SnapshotTerm(), liveTerm)
		var due *time.Time
		if term != "" || live != nil {
			due = account.DueDateFor(inv.Date, term)
		}
		lines = append(lines, account.StatementLine{
			AccountID:    accID,
			AccountName:  name,
			Source:       account.SourceInvoice,
			DocumentID:   inv.ID,
			DocumentKind: string(inv.Kind),
			DocumentNo:   inv.Number,
			Description:  inv.Note,
			Date:         inv.Date,
			DueDate:      due,
			Debit:        inv.NetTotal,
			Credit:       decimal.Zero,
		})
	}
	return lines
}

func collectionLines(accID uuid.UUID, collections []collection.Collection, live *account.Account) []account.StatementLine {
	var lines []account.StatementLine
	for i := range collections {
		c := &collections[i]
		if c.AccountID != accID {
			continue
		}
		name := c.AccountName
		if live != nil {
			name = live.LegalName
		}
		lines = append(lines, account.StatementLine{
			AccountID:    accID,
			AccountName:  name,
			Source:       account.SourceCollection,
			DocumentID:   c.ID,
			DocumentKind: string(c.PaymentMethod),
			DocumentNo:   c.DocumentNo,
			Description:  c.Note,
			Date:         c.Date,
			DueDate:      c.DueDate,
			Debit:        decimal.Zero,
			Credit:       c.Amount,
		})
	}
	return lines
}

func (s *StatementService) convert(ctx context.Context, sum account.StatementSummary, currency string) *ConvertedSummary {
	if s.rates == nil {
		return nil
	}
	rate, stale, err := s.rates.Rate(ctx, currency)
	if err != nil {
		logger.L(ctx).Warn("Display conversion skipped",
			zap.String("currency", currency),
			zap.Error(err),
		)
		return nil
	}
	return &ConvertedSummary{
		Currency:     currency,
		Rate:         rate,
		TotalDebit:   sum.TotalDebit.Mul(rate).Round(2),
		TotalCredit:  sum.TotalCredit.Mul(rate).Round(2),
		FinalBalance: sum.FinalBalance.Mul(rate).Round(2),
		Stale:        stale,
	}
}
