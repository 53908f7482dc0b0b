package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/core/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
)

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) ListEntriesByAccount(ctx context.Context, companyID, accountCode string, limit, offset int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, companyID, accountCode, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntriesByDocument(ctx context.Context, documentID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.FinancialDocument, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialDocument), args.Error(1)
}

func (m *MockLedgerRepository) ListDocuments(ctx context.Context, companyID string, docType *domain.DocumentType, limit, offset int) ([]domain.FinancialDocument, error) {
	args := m.Called(ctx, companyID, docType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialDocument), args.Error(1)
}

func (m *MockLedgerRepository) SaveDocumentWithEntries(ctx context.Context, doc domain.FinancialDocument, entries []domain.LedgerEntry) error {
	args := m.Called(ctx, doc, entries)
	return args.Error(0)
}

// --- Mock FxService ---

type MockFxService struct {
	mock.Mock
}

var _ portssvc.FxSvcFacade = (*MockFxService)(nil)

func (m *MockFxService) AddLot(ctx context.Context, companyID string, req dto.AddFxLotRequest, userID string) (*domain.FxLot, error) {
	args := m.Called(ctx, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FxLot), args.Error(1)
}

func (m *MockFxService) Consume(ctx context.Context, companyID string, req dto.ConsumeFxRequest, userID string) (*domain.FxConsumeResult, error) {
	args := m.Called(ctx, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FxConsumeResult), args.Error(1)
}

func (m *MockFxService) ListLots(ctx context.Context, companyID string, currencyCode *string) ([]domain.FxLot, error) {
	args := m.Called(ctx, companyID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FxLot), args.Error(1)
}

func (m *MockFxService) ListConsumptions(ctx context.Context, companyID string, fxLotID *string) ([]domain.FxConsumption, error) {
	args := m.Called(ctx, companyID, fxLotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FxConsumption), args.Error(1)
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockRepo      *MockLedgerRepository
	mockFxSvc     *MockFxService
	mockSequencer *MockSequencerService
	service       portssvc.LedgerSvcFacade
	companyID     string
	userID        string
	now           time.Time
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.mockFxSvc = new(MockFxService)
	suite.mockSequencer = new(MockSequencerService)
	suite.now = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	suite.service = services.NewLedgerService(
		suite.mockRepo,
		suite.mockSequencer,
		suite.mockFxSvc,
		services.NewDefaultAccountResolver(),
		fixedClock{now: suite.now},
		"IRR",
	)
	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// --- RecordCost ---

func (suite *LedgerServiceTestSuite) TestRecordCost_BaseCurrency() {
	ctx := context.Background()
	req := dto.RecordCostRequest{
		Description:   "Office rent",
		Amount:        decimal.NewFromInt(5_000_000),
		CurrencyCode:  "IRR",
		PaymentSource: string(domain.PaymentSourceBank),
	}

	suite.mockSequencer.On("NextNumber", ctx, domain.DocumentTypeCost, suite.companyID, suite.userID).
		Return("CST000001", nil).Once()

	var savedDoc domain.FinancialDocument
	var savedEntries []domain.LedgerEntry
	suite.mockRepo.On("SaveDocumentWithEntries", ctx, mock.AnythingOfType("domain.FinancialDocument"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedDoc = args.Get(1).(domain.FinancialDocument)
			savedEntries = args.Get(2).([]domain.LedgerEntry)
		}).Return(nil).Once()

	doc, err := suite.service.RecordCost(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("CST000001", doc.DocumentNumber)
	suite.Equal("1", doc.ExchangeRate.String())
	suite.True(doc.LocalAmount.Equal(doc.Amount))
	suite.Equal(suite.now, savedDoc.DocumentDate)

	// Expense debit against the bank asset credit, no rate on base currency rows.
	suite.Require().Len(savedEntries, 2)
	suite.Equal("6000", savedEntries[0].AccountCode)
	suite.True(savedEntries[0].DebitAmount.Equal(doc.Amount))
	suite.Equal("1200", savedEntries[1].AccountCode)
	suite.True(savedEntries[1].CreditAmount.Equal(doc.Amount))
	suite.Nil(savedEntries[0].ExchangeRate)

	suite.mockFxSvc.AssertNotCalled(suite.T(), "Consume")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecordCost_ForeignCurrencyUsesRealizedRate() {
	ctx := context.Background()
	req := dto.RecordCostRequest{
		Description:   "Airline settlement",
		Amount:        decimal.NewFromInt(120),
		CurrencyCode:  "usd",
		PaymentSource: string(domain.PaymentSourceCash),
	}

	suite.mockSequencer.On("NextNumber", ctx, domain.DocumentTypeCost, suite.companyID, suite.userID).
		Return("CST000007", nil).Once()

	war := decimal.RequireFromString("42500.50")
	suite.mockFxSvc.On("Consume", ctx, suite.companyID,
		dto.ConsumeFxRequest{CurrencyCode: "USD", Amount: decimal.NewFromInt(120).Round(2), Reference: "CST000007"},
		suite.userID).
		Return(&domain.FxConsumeResult{
			CurrencyCode:        "USD",
			ConsumedAmount:      decimal.NewFromInt(120),
			TotalCost:           decimal.RequireFromString("5100060"),
			WeightedAverageRate: war,
		}, nil).Once()

	var savedEntries []domain.LedgerEntry
	suite.mockRepo.On("SaveDocumentWithEntries", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedEntries = args.Get(2).([]domain.LedgerEntry)
		}).Return(nil).Once()

	doc, err := suite.service.RecordCost(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("USD", doc.CurrencyCode)
	suite.True(doc.ExchangeRate.Equal(war))
	suite.Equal("5100060.00", doc.LocalAmount.StringFixed(2))

	suite.Require().Len(savedEntries, 2)
	suite.Require().NotNil(savedEntries[0].ExchangeRate)
	suite.True(savedEntries[0].ExchangeRate.Equal(war))
	suite.Equal("5100060.00", savedEntries[0].LocalDebitAmount.StringFixed(2))

	suite.mockFxSvc.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecordCost_RejectsNonPositiveAmount() {
	req := dto.RecordCostRequest{
		Description:   "Bad",
		Amount:        decimal.Zero,
		CurrencyCode:  "IRR",
		PaymentSource: string(domain.PaymentSourceCash),
	}

	_, err := suite.service.RecordCost(context.Background(), suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSequencer.AssertNotCalled(suite.T(), "NextNumber")
}

func (suite *LedgerServiceTestSuite) TestRecordCost_InsufficientFxAbortsDocument() {
	ctx := context.Background()
	req := dto.RecordCostRequest{
		Description:   "Airline settlement",
		Amount:        decimal.NewFromInt(900),
		CurrencyCode:  "USD",
		PaymentSource: string(domain.PaymentSourceCash),
	}

	suite.mockSequencer.On("NextNumber", ctx, domain.DocumentTypeCost, suite.companyID, suite.userID).
		Return("CST000008", nil).Once()
	suite.mockFxSvc.On("Consume", ctx, suite.companyID, mock.Anything, suite.userID).
		Return(nil, apperrors.ErrInsufficientBalance).Once()

	_, err := suite.service.RecordCost(ctx, suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveDocumentWithEntries")
}

// --- RecordIncome ---

func (suite *LedgerServiceTestSuite) TestRecordIncome_ForeignCurrencyOpensLot() {
	ctx := context.Background()
	rate := decimal.NewFromInt(42000)
	req := dto.RecordIncomeRequest{
		Description:   "Tour package sale",
		Amount:        decimal.NewFromInt(300),
		CurrencyCode:  "USD",
		ExchangeRate:  &rate,
		PaymentSource: string(domain.PaymentSourceBank),
	}

	suite.mockSequencer.On("NextNumber", ctx, domain.DocumentTypeIncome, suite.companyID, suite.userID).
		Return("INC000003", nil).Once()

	var lotReq dto.AddFxLotRequest
	suite.mockFxSvc.On("AddLot", ctx, suite.companyID, mock.AnythingOfType("dto.AddFxLotRequest"), suite.userID).
		Run(func(args mock.Arguments) { lotReq = args.Get(2).(dto.AddFxLotRequest) }).
		Return(&domain.FxLot{FxLotID: uuid.NewString()}, nil).Once()

	var savedEntries []domain.LedgerEntry
	suite.mockRepo.On("SaveDocumentWithEntries", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedEntries = args.Get(2).([]domain.LedgerEntry)
		}).Return(nil).Once()

	doc, err := suite.service.RecordIncome(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("INC000003", doc.DocumentNumber)
	suite.Equal("12600000.00", doc.LocalAmount.StringFixed(2))

	// The new lot is tied back to the income document.
	suite.Equal("USD", lotReq.CurrencyCode)
	suite.Equal("INC000003", lotReq.Reference)
	suite.True(lotReq.ExchangeRate.Equal(rate.Round(6)))

	// Bank asset debit against the revenue credit.
	suite.Require().Len(savedEntries, 2)
	suite.Equal("1200", savedEntries[0].AccountCode)
	suite.Equal("4000", savedEntries[1].AccountCode)
	suite.mockFxSvc.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecordIncome_ForeignCurrencyRequiresRate() {
	req := dto.RecordIncomeRequest{
		Description:   "Tour package sale",
		Amount:        decimal.NewFromInt(300),
		CurrencyCode:  "USD",
		PaymentSource: string(domain.PaymentSourceBank),
	}

	_, err := suite.service.RecordIncome(context.Background(), suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSequencer.AssertNotCalled(suite.T(), "NextNumber")
	suite.mockFxSvc.AssertNotCalled(suite.T(), "AddLot")
}

func (suite *LedgerServiceTestSuite) TestRecordIncome_BaseCurrencySkipsFx() {
	ctx := context.Background()
	req := dto.RecordIncomeRequest{
		Description:   "Domestic ticket sale",
		Amount:        decimal.NewFromInt(2_500_000),
		CurrencyCode:  "IRR",
		PaymentSource: string(domain.PaymentSourceCash),
	}

	suite.mockSequencer.On("NextNumber", ctx, domain.DocumentTypeIncome, suite.companyID, suite.userID).
		Return("INC000004", nil).Once()
	suite.mockRepo.On("SaveDocumentWithEntries", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	doc, err := suite.service.RecordIncome(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("1", doc.ExchangeRate.String())
	suite.mockFxSvc.AssertNotCalled(suite.T(), "AddLot")
}

// --- RecordTransfer ---

func (suite *LedgerServiceTestSuite) TestRecordTransfer_CashToBank() {
	ctx := context.Background()
	req := dto.RecordTransferRequest{
		Description:  "Cash deposit",
		Amount:       decimal.NewFromInt(10_000_000),
		CurrencyCode: "IRR",
		FromSource:   string(domain.PaymentSourceCash),
		ToSource:     string(domain.PaymentSourceBank),
	}

	suite.mockSequencer.On("NextNumber", ctx, domain.DocumentTypeTransfer, suite.companyID, suite.userID).
		Return("TRF000001", nil).Once()

	var savedDoc domain.FinancialDocument
	var savedEntries []domain.LedgerEntry
	suite.mockRepo.On("SaveDocumentWithEntries", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedDoc = args.Get(1).(domain.FinancialDocument)
			savedEntries = args.Get(2).([]domain.LedgerEntry)
		}).Return(nil).Once()

	doc, err := suite.service.RecordTransfer(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentSourceCash, savedDoc.PaymentSource)
	suite.Equal(domain.PaymentSourceBank, savedDoc.TransferTarget)

	// Target asset is debited, source asset is credited.
	suite.Require().Len(savedEntries, 2)
	suite.Equal("1200", savedEntries[0].AccountCode)
	suite.True(savedEntries[0].DebitAmount.Equal(doc.Amount))
	suite.Equal("1100", savedEntries[1].AccountCode)
	suite.True(savedEntries[1].CreditAmount.Equal(doc.Amount))

	suite.mockFxSvc.AssertNotCalled(suite.T(), "Consume")
	suite.mockFxSvc.AssertNotCalled(suite.T(), "AddLot")
}

func (suite *LedgerServiceTestSuite) TestRecordTransfer_RejectsSameSource() {
	req := dto.RecordTransferRequest{
		Description:  "Nowhere",
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "IRR",
		FromSource:   string(domain.PaymentSourceCash),
		ToSource:     string(domain.PaymentSourceCash),
	}

	_, err := suite.service.RecordTransfer(context.Background(), suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSequencer.AssertNotCalled(suite.T(), "NextNumber")
}

// --- Queries ---

func (suite *LedgerServiceTestSuite) TestGetDocumentByID_ScopesToCompany() {
	ctx := context.Background()
	doc := &domain.FinancialDocument{
		DocumentID: uuid.NewString(),
		CompanyID:  uuid.NewString(),
	}

	suite.mockRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()

	_, err := suite.service.GetDocumentByID(ctx, suite.companyID, doc.DocumentID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestListDocuments_DefaultsLimit() {
	ctx := context.Background()

	suite.mockRepo.On("ListDocuments", ctx, suite.companyID, (*domain.DocumentType)(nil), 20, 0).
		Return([]domain.FinancialDocument{}, nil).Once()

	_, err := suite.service.ListDocuments(ctx, suite.companyID, dto.ListDocumentsParams{})

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListEntriesByAccount_DefaultsLimit() {
	ctx := context.Background()

	suite.mockRepo.On("ListEntriesByAccount", ctx, suite.companyID, "1100", 50, 0).
		Return([]domain.LedgerEntry{}, nil).Once()

	_, err := suite.service.ListEntriesByAccount(ctx, suite.companyID, "1100", 0, 0)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListEntriesByDocument_FiltersForeignCompanies() {
	ctx := context.Background()
	documentID := uuid.NewString()
	mine := domain.LedgerEntry{LedgerEntryID: uuid.NewString(), DocumentID: documentID, CompanyID: suite.companyID}
	foreign := domain.LedgerEntry{LedgerEntryID: uuid.NewString(), DocumentID: documentID, CompanyID: uuid.NewString()}

	suite.mockRepo.On("ListEntriesByDocument", ctx, documentID).
		Return([]domain.LedgerEntry{mine, foreign}, nil).Once()

	entries, err := suite.service.ListEntriesByDocument(ctx, suite.companyID, documentID)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal(mine.LedgerEntryID, entries[0].LedgerEntryID)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
