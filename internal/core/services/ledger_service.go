package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

// ledgerService records Cost/Income/Transfer documents and projects each into
// a balanced pair of append-only ledger rows. Posting accounts come from the
// injected AccountResolver policy, never from inlined constants.
type ledgerService struct {
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	sequencer    portssvc.SequencerSvcFacade
	fxSvc        portssvc.FxSvcFacade
	resolver     portssvc.AccountResolver
	clock        portssvc.Clock
	baseCurrency string
}

// NewLedgerService creates the ledger projection service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, sequencer portssvc.SequencerSvcFacade, fxSvc portssvc.FxSvcFacade, resolver portssvc.AccountResolver, clock portssvc.Clock, baseCurrency string) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:   ledgerRepo,
		sequencer:    sequencer,
		fxSvc:        fxSvc,
		resolver:     resolver,
		clock:        clock,
		baseCurrency: strings.ToUpper(baseCurrency),
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// RecordCost implements portssvc.LedgerSvcFacade. A foreign-currency cost is
// settled from the FX holdings: the FIFO weighted-average rate of the
// consumed lots becomes the document's realized exchange rate.
func (s *ledgerService) RecordCost(ctx context.Context, companyID string, req dto.RecordCostRequest, userID string) (*domain.FinancialDocument, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}

	number, err := s.sequencer.NextNumber(ctx, domain.DocumentTypeCost, companyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue cost document number: %w", err)
	}

	rate := decimal.NewFromInt(1)
	if currency != s.baseCurrency {
		result, err := s.fxSvc.Consume(ctx, companyID, dto.ConsumeFxRequest{
			CurrencyCode: currency,
			Amount:       amount,
			Reference:    number,
		}, userID)
		if err != nil {
			return nil, err
		}
		rate = result.WeightedAverageRate
	}

	doc := s.newDocument(domain.DocumentTypeCost, number, companyID, req.Description, amount, currency, rate, userID)
	doc.PaymentSource = domain.PaymentSource(req.PaymentSource)
	doc.CounterpartyID = req.CounterpartyID
	if req.DocumentDate != nil {
		doc.DocumentDate = *req.DocumentDate
	}

	sourceRef, err := s.resolver.SourceAccount(doc.PaymentSource)
	if err != nil {
		return nil, err
	}
	entries := s.buildEntryPair(doc, s.resolver.ExpenseAccount(), sourceRef, userID)

	if err := s.ledgerRepo.SaveDocumentWithEntries(ctx, doc, entries); err != nil {
		logger.Error("Failed to save cost document", slog.String("error", err.Error()), slog.String("document_number", number))
		return nil, fmt.Errorf("failed to save cost document: %w", err)
	}

	logger.Info("Cost recorded", slog.String("document_number", number), slog.String("amount", amount.String()), slog.String("currency", currency))
	return &doc, nil
}

// RecordIncome implements portssvc.LedgerSvcFacade. Foreign-currency income
// opens a new FX lot at the caller-supplied acquisition rate.
func (s *ledgerService) RecordIncome(ctx context.Context, companyID string, req dto.RecordIncomeRequest, userID string) (*domain.FinancialDocument, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}

	rate := decimal.NewFromInt(1)
	if currency != s.baseCurrency {
		if req.ExchangeRate == nil || !req.ExchangeRate.IsPositive() {
			return nil, fmt.Errorf("%w: a positive exchange rate is required for %s income", apperrors.ErrValidation, currency)
		}
		rate = req.ExchangeRate.Round(6)
	}

	number, err := s.sequencer.NextNumber(ctx, domain.DocumentTypeIncome, companyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue income document number: %w", err)
	}

	if currency != s.baseCurrency {
		if _, err := s.fxSvc.AddLot(ctx, companyID, dto.AddFxLotRequest{
			CurrencyCode: currency,
			Amount:       amount,
			ExchangeRate: rate,
			LotDate:      req.DocumentDate,
			Reference:    number,
		}, userID); err != nil {
			return nil, err
		}
	}

	doc := s.newDocument(domain.DocumentTypeIncome, number, companyID, req.Description, amount, currency, rate, userID)
	doc.PaymentSource = domain.PaymentSource(req.PaymentSource)
	doc.CounterpartyID = req.CounterpartyID
	if req.DocumentDate != nil {
		doc.DocumentDate = *req.DocumentDate
	}

	sourceRef, err := s.resolver.SourceAccount(doc.PaymentSource)
	if err != nil {
		return nil, err
	}
	entries := s.buildEntryPair(doc, sourceRef, s.resolver.RevenueAccount(), userID)

	if err := s.ledgerRepo.SaveDocumentWithEntries(ctx, doc, entries); err != nil {
		logger.Error("Failed to save income document", slog.String("error", err.Error()), slog.String("document_number", number))
		return nil, fmt.Errorf("failed to save income document: %w", err)
	}

	logger.Info("Income recorded", slog.String("document_number", number), slog.String("amount", amount.String()), slog.String("currency", currency))
	return &doc, nil
}

// RecordTransfer implements portssvc.LedgerSvcFacade. Transfers move value
// between payment sources without touching the FX holdings.
func (s *ledgerService) RecordTransfer(ctx context.Context, companyID string, req dto.RecordTransferRequest, userID string) (*domain.FinancialDocument, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}
	if req.FromSource == req.ToSource {
		return nil, fmt.Errorf("%w: transfer source and target must differ", apperrors.ErrValidation)
	}

	rate := decimal.NewFromInt(1)
	if currency != s.baseCurrency {
		if req.ExchangeRate == nil || !req.ExchangeRate.IsPositive() {
			return nil, fmt.Errorf("%w: a positive exchange rate is required for %s transfers", apperrors.ErrValidation, currency)
		}
		rate = req.ExchangeRate.Round(6)
	}

	number, err := s.sequencer.NextNumber(ctx, domain.DocumentTypeTransfer, companyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue transfer document number: %w", err)
	}

	doc := s.newDocument(domain.DocumentTypeTransfer, number, companyID, req.Description, amount, currency, rate, userID)
	doc.PaymentSource = domain.PaymentSource(req.FromSource)
	doc.TransferTarget = domain.PaymentSource(req.ToSource)
	if req.DocumentDate != nil {
		doc.DocumentDate = *req.DocumentDate
	}

	fromRef, err := s.resolver.SourceAccount(doc.PaymentSource)
	if err != nil {
		return nil, err
	}
	toRef, err := s.resolver.SourceAccount(doc.TransferTarget)
	if err != nil {
		return nil, err
	}
	entries := s.buildEntryPair(doc, toRef, fromRef, userID)

	if err := s.ledgerRepo.SaveDocumentWithEntries(ctx, doc, entries); err != nil {
		logger.Error("Failed to save transfer document", slog.String("error", err.Error()), slog.String("document_number", number))
		return nil, fmt.Errorf("failed to save transfer document: %w", err)
	}

	logger.Info("Transfer recorded", slog.String("document_number", number), slog.String("amount", amount.String()), slog.String("currency", currency))
	return &doc, nil
}

func (s *ledgerService) newDocument(docType domain.DocumentType, number, companyID, description string, amount decimal.Decimal, currency string, rate decimal.Decimal, userID string) domain.FinancialDocument {
	now := s.clock.Now()
	return domain.FinancialDocument{
		DocumentID:     uuid.NewString(),
		DocumentNumber: number,
		DocumentType:   docType,
		Description:    description,
		Amount:         amount,
		CurrencyCode:   currency,
		ExchangeRate:   rate,
		LocalAmount:    amount.Mul(rate).Round(2),
		DocumentDate:   now,
		CompanyID:      companyID,
		AuditFields:    domain.NewAuditFields(now, userID),
	}
}

// buildEntryPair projects one document into its balanced debit/credit pair.
func (s *ledgerService) buildEntryPair(doc domain.FinancialDocument, debitRef, creditRef portssvc.AccountRef, userID string) []domain.LedgerEntry {
	var ratePtr *decimal.Decimal
	if doc.CurrencyCode != s.baseCurrency {
		rate := doc.ExchangeRate
		ratePtr = &rate
	}

	base := domain.LedgerEntry{
		EntryDate:      doc.DocumentDate,
		DocumentNumber: doc.DocumentNumber,
		DocumentType:   doc.DocumentType,
		DocumentID:     doc.DocumentID,
		Description:    doc.Description,
		CurrencyCode:   doc.CurrencyCode,
		ExchangeRate:   ratePtr,
		CounterpartyID: doc.CounterpartyID,
		CompanyID:      doc.CompanyID,
		CreatedAt:      doc.CreatedAt,
		CreatedBy:      userID,
	}

	debit := base
	debit.LedgerEntryID = uuid.NewString()
	debit.AccountCode = debitRef.Code
	debit.AccountName = debitRef.Name
	debit.DebitAmount = doc.Amount
	debit.LocalDebitAmount = doc.LocalAmount

	credit := base
	credit.LedgerEntryID = uuid.NewString()
	credit.AccountCode = creditRef.Code
	credit.AccountName = creditRef.Name
	credit.CreditAmount = doc.Amount
	credit.LocalCreditAmount = doc.LocalAmount

	return []domain.LedgerEntry{debit, credit}
}

// GetDocumentByID implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetDocumentByID(ctx context.Context, companyID, documentID string) (*domain.FinancialDocument, error) {
	doc, err := s.ledgerRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	if doc.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return doc, nil
}

// ListDocuments implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListDocuments(ctx context.Context, companyID string, params dto.ListDocumentsParams) ([]domain.FinancialDocument, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	var docType *domain.DocumentType
	if params.DocumentType != nil {
		dt := domain.DocumentType(*params.DocumentType)
		docType = &dt
	}
	docs, err := s.ledgerRepo.ListDocuments(ctx, companyID, docType, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// ListEntriesByAccount implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListEntriesByAccount(ctx context.Context, companyID, accountCode string, limit, offset int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.ledgerRepo.ListEntriesByAccount(ctx, companyID, accountCode, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for account %s: %w", accountCode, err)
	}
	return entries, nil
}

// ListEntriesByDocument implements portssvc.LedgerSvcFacade. The document may
// be a Cost/Income/Transfer header or a posted voucher; rows from other
// companies are filtered out rather than erroring, to obscure existence.
func (s *ledgerService) ListEntriesByDocument(ctx context.Context, companyID, documentID string) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.ListEntriesByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for document %s: %w", documentID, err)
	}
	scoped := make([]domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.CompanyID == companyID {
			scoped = append(scoped, e)
		}
	}
	return scoped, nil
}
