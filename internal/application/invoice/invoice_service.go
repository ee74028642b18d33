package invoice

import (
	"context"
	"errors"
	"strings"
	"time"

	accountapp "github.com/erp/ledger/internal/application/account"
	materialapp "github.com/erp/ledger/internal/application/material"
	"github.com/erp/ledger/internal/application/txscope"
	"github.com/erp/ledger/internal/domain/invoice"
	"github.com/erp/ledger/internal/domain/material"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InvoiceService issues invoices. Creation validates stock for every line,
// then persists the invoice, accrues the account debit and deducts stock in
// one unit of work.
type InvoiceService struct {
	invoices    invoice.InvoiceRepository
	scope       txscope.TransactionScope
	maxAttempts int
	now         func() time.Time
	metrics     *telemetry.LedgerMetrics
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoices invoice.InvoiceRepository, scope txscope.TransactionScope) *InvoiceService {
	return &InvoiceService{
		invoices:    invoices,
		scope:       scope,
		maxAttempts: txscope.DefaultMaxAttempts,
		now:         time.Now,
	}
}

// SetMaxAttempts sets how often creation is retried on a version conflict
func (s *InvoiceService) SetMaxAttempts(n int) {
	if n > 0 {
		s.maxAttempts = n
	}
}

// SetMetrics sets the ledger metrics recorder
func (s *InvoiceService) SetMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetClock overrides the time source used for default invoice dates
func (s *InvoiceService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateInvoice issues an invoice. Any failure rolls back every write, so a
// rejected invoice leaves neither rows, debit nor movements behind.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, actor invoice.Actor) (*InvoiceResponse, error) {
	kind := invoice.KindSales
	if req.Kind != "" {
		kind = invoice.Kind(strings.ToUpper(req.Kind))
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("invoice kind %q is not valid", req.Kind)
	}
	date := s.now()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}
	inputs := toLineInputs(req.Lines)

	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create", attribute.String("invoice.kind", string(kind)))
	defer span.End()

	creation := invoice.NewCreation()
	var created *invoice.Invoice
	err := txscope.ExecuteWithRetry(ctx, s.scope, s.maxAttempts, "create_invoice", func(repos txscope.Repositories) error {
		creation = invoice.NewCreation()
		if err := creation.TransitionTo(invoice.StateValidating); err != nil {
			return err
		}

		number := strings.TrimSpace(req.Number)
		if number == "" {
			var err error
			if number, err = nextNumber(ctx, repos, kind, date.Year()); err != nil {
				return err
			}
		} else if err := reserveNumber(ctx, repos, kind, number); err != nil {
			return err
		}

		inv, err := invoice.NewInvoice(number, date, kind, req.AccountID, inputs, actor)
		if err != nil {
			return err
		}
		inv.Note = req.Note

		if err := validateStock(ctx, repos, inv); err != nil {
			return err
		}

		if inv.AccountID != nil {
			acc, err := repos.Accounts().FindByID(ctx, *inv.AccountID)
			if err != nil {
				return err
			}
			inv.AttachSnapshot(acc.Snapshot())
		}

		if err := repos.Invoices().Create(ctx, inv); err != nil {
			return err
		}

		if inv.AccountID != nil {
			if err := accountapp.AddDebitInTx(ctx, repos, *inv.AccountID, inv.NetTotal); err != nil {
				return err
			}
		}

		ref := material.Reference{Kind: material.RefInvoice, ID: inv.ID.String(), Note: inv.Number}
		for _, line := range inv.StockLines() {
			if _, err := materialapp.ReduceStockInTx(ctx, repos, line.MaterialCode, line.Quantity, ref); err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					continue
				}
				return err
			}
		}

		created = inv
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.reject(ctx, creation, req, err)
		return nil, err
	}
	if err := creation.TransitionTo(invoice.StateCommitted); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Invoice committed",
		zap.String("invoice_id", created.ID.String()),
		zap.String("number", created.Number),
		zap.String("state", string(creation.State())),
		zap.String("net_total", created.NetTotal.String()),
		zap.Int("lines", len(created.Lines)),
	)
	if s.metrics != nil {
		s.metrics.RecordInvoiceCreated(ctx, string(created.Kind), created.NetTotal.InexactFloat64())
	}
	resp := ToInvoiceResponse(created)
	return &resp, nil
}

func (s *InvoiceService) reject(ctx context.Context, creation *invoice.Creation, req CreateInvoiceRequest, cause error) {
	if creation.State().IsTerminal() || creation.TransitionTo(invoice.StateRejected) != nil {
		return
	}
	logger.L(ctx).Warn("Invoice rejected",
		zap.String("kind", req.Kind),
		zap.String("state", string(creation.State())),
		zap.String("error_code", shared.ErrorCode(cause)),
		zap.Error(cause),
	)
	if s.metrics != nil {
		s.metrics.RecordInvoiceRejected(ctx, shared.ErrorCode(cause))
	}
}

// storedMaximum seeds a counter that does not exist yet from the highest
// number already stored for (kind, year).
func storedMaximum(repos txscope.Repositories, kind invoice.Kind, year int) invoice.SeedFunc {
	return func(ctx context.Context) (int64, error) {
		numbers, err := repos.Invoices().NumbersForYear(ctx, kind, year)
		if err != nil {
			return 0, err
		}
		return invoice.MaxSequence(numbers), nil
	}
}

// nextNumber draws the next value of the (kind, year) counter.
func nextNumber(ctx context.Context, repos txscope.Repositories, kind invoice.Kind, year int) (string, error) {
	seq, err := repos.Counters().Next(ctx, kind, year, storedMaximum(repos, kind, year))
	if err != nil {
		return "", err
	}
	return invoice.FormatNumber(kind, year, seq), nil
}

// reserveNumber moves the counter past an explicit number in the generated
// form, so a later draw cannot hand out the same number again.
func reserveNumber(ctx context.Context, repos txscope.Repositories, kind invoice.Kind, number string) error {
	year, seq, ok := invoice.ParseNumber(kind, number)
	if !ok {
		return nil
	}
	return repos.Counters().Raise(ctx, kind, year, seq, storedMaximum(repos, kind, year))
}

// validateStock checks every stock line against the projected stock of its
// material, cumulatively across lines, and reports all shortages at once.
// Lines whose material cannot be resolved carry no stock effect.
func validateStock(ctx context.Context, repos txscope.Repositories, inv *invoice.Invoice) error {
	type projection struct {
		m         *material.Material
		requested decimal.Decimal
	}
	projected := make(map[uuid.UUID]*projection)
	var shortages []shared.StockShortage

	for _, line := range inv.StockLines() {
		m, err := materialapp.ResolveByCode(ctx, repos.Materials(), line.MaterialCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				logger.L(ctx).Warn("Invoice line material not found, no stock effect",
					zap.Int("line_no", line.LineNo),
					zap.String("material_code", line.MaterialCode),
				)
				continue
			}
			return err
		}

		p, ok := projected[m.ID]
		if !ok {
			p = &projection{m: m, requested: decimal.Zero}
			projected[m.ID] = p
		}
		available := p.m.Stock.Sub(p.requested)
		p.requested = p.requested.Add(line.Quantity)
		if !p.m.CanSupply(p.requested) {
			shortages = append(shortages, shared.StockShortage{
				LineNo:       line.LineNo,
				MaterialCode: p.m.Code,
				Requested:    line.Quantity,
				Available:    available,
			})
		}
	}

	if len(shortages) > 0 {
		return shared.NewInsufficientStockError(shortages...)
	}
	return nil
}

// UpdateInvoice applies a partial edit. Stock and account totals booked at
// creation are left as they are.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest, actor invoice.Actor) (*InvoiceResponse, error) {
	u := invoice.Update{
		Date:  req.Date,
		Note:  req.Note,
		Lines: toLineInputs(req.Lines),
	}
	if req.Kind != nil {
		k := invoice.Kind(strings.ToUpper(*req.Kind))
		u.Kind = &k
	}
	if req.Status != nil {
		st := invoice.Status(strings.ToLower(*req.Status))
		u.Status = &st
	}

	var updated *invoice.Invoice
	err := txscope.ExecuteWithRetry(ctx, s.scope, s.maxAttempts, "update_invoice", func(repos txscope.Repositories) error {
		inv, err := repos.Invoices().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.ApplyUpdate(u, actor); err != nil {
			return err
		}
		if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Invoice updated",
		zap.String("invoice_id", updated.ID.String()),
		zap.String("number", updated.Number),
		zap.Int("version", updated.Version),
	)
	resp := ToInvoiceResponse(updated)
	return &resp, nil
}

// GetInvoice returns an invoice by id
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// ListInvoices returns a page of invoices, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, f ListInvoicesFilter) (shared.Paginated[InvoiceResponse], error) {
	filter := invoice.Filter{Filter: shared.DefaultFilter()}
	filter.OrderBy = "date"
	filter.OrderDir = "desc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.AccountID != "" {
		id, err := uuid.Parse(f.AccountID)
		if err != nil {
			return shared.Paginated[InvoiceResponse]{}, shared.NewValidationError("account_id is not a valid id")
		}
		filter.AccountIDs = []uuid.UUID{id}
	}
	if f.Kind != "" {
		filter.Kind = invoice.Kind(strings.ToUpper(f.Kind))
	}
	if f.DateFrom != nil {
		filter.Range.From = *f.DateFrom
	}
	if f.DateTo != nil {
		filter.Range.To = *f.DateTo
	}

	items, total, err := s.invoices.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	out := make([]InvoiceResponse, len(items))
	for i := range items {
		out[i] = ToInvoiceResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}
