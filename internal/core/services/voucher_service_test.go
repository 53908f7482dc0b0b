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

// --- Mock VoucherRepository ---

type MockVoucherRepository struct {
	mock.Mock
}

var _ portsrepo.VoucherRepositoryFacade = (*MockVoucherRepository)(nil)

func (m *MockVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) ListVouchers(ctx context.Context, companyID string, status *domain.VoucherStatus, limit, offset int) ([]domain.Voucher, error) {
	args := m.Called(ctx, companyID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher, entries []domain.VoucherEntry) error {
	args := m.Called(ctx, voucher, entries)
	return args.Error(0)
}

func (m *MockVoucherRepository) UpdateVoucherStatus(ctx context.Context, voucher domain.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockVoucherRepository) PostVoucher(ctx context.Context, voucher domain.Voucher, ledgerRows []domain.LedgerEntry, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, voucher, ledgerRows, balanceChanges)
	return args.Error(0)
}

// --- Mock AccountService ---

type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, companyID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, companyID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, companyID, accountID, userID string) error {
	args := m.Called(ctx, companyID, accountID, userID)
	return args.Error(0)
}

// --- Mock SequencerService ---

type MockSequencerService struct {
	mock.Mock
}

var _ portssvc.SequencerSvcFacade = (*MockSequencerService)(nil)

func (m *MockSequencerService) NextNumber(ctx context.Context, docType domain.DocumentType, companyID, userID string) (string, error) {
	args := m.Called(ctx, docType, companyID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSequencerService) GetSequence(ctx context.Context, docType domain.DocumentType, companyID string) (*domain.DocumentNumber, error) {
	args := m.Called(ctx, docType, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentNumber), args.Error(1)
}

func (m *MockSequencerService) ConfigureSequence(ctx context.Context, docType domain.DocumentType, companyID string, req dto.ConfigureSequenceRequest, userID string) (*domain.DocumentNumber, error) {
	args := m.Called(ctx, docType, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentNumber), args.Error(1)
}

// --- Test Suite Setup ---

type VoucherServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockVoucherRepository
	mockAccountSvc *MockAccountService
	mockSequencer  *MockSequencerService
	service        portssvc.VoucherSvcFacade
	companyID      string
	userID         string
	now            time.Time
	cashAccount    domain.Account
	revenueAccount domain.Account
}

func (suite *VoucherServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockVoucherRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockSequencer = new(MockSequencerService)
	suite.now = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	suite.service = services.NewVoucherService(suite.mockRepo, suite.mockAccountSvc, suite.mockSequencer, fixedClock{now: suite.now})

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.cashAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "1100",
		AccountName:  "Cash on Hand",
		AccountType:  domain.Asset,
		CurrencyCode: "IRR",
		IsActive:     true,
		CompanyID:    suite.companyID,
	}
	suite.revenueAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "4000",
		AccountName:  "Sales Revenue",
		AccountType:  domain.Revenue,
		CurrencyCode: "IRR",
		IsActive:     true,
		CompanyID:    suite.companyID,
	}
}

func (suite *VoucherServiceTestSuite) createRequest() dto.CreateVoucherRequest {
	return dto.CreateVoucherRequest{
		VoucherType:  string(domain.VoucherIncome),
		Description:  "Ticket sale",
		CurrencyCode: "IRR",
		VoucherDate:  suite.now,
		Entries: []dto.CreateVoucherEntryRequest{
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(500), EntryType: string(domain.Debit)},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(500), EntryType: string(domain.Credit)},
		},
	}
}

func (suite *VoucherServiceTestSuite) accountsMap() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cashAccount.AccountID:    suite.cashAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}
}

func (suite *VoucherServiceTestSuite) storedVoucher(status domain.VoucherStatus) *domain.Voucher {
	v := &domain.Voucher{
		VoucherID:     uuid.NewString(),
		VoucherNumber: "VCH000010",
		VoucherType:   domain.VoucherIncome,
		Description:   "Ticket sale",
		CurrencyCode:  "IRR",
		VoucherDate:   suite.now,
		Status:        status,
		IsPosted:      status == domain.VoucherPosted,
		CompanyID:     suite.companyID,
		Version:       1,
		Entries: []domain.VoucherEntry{
			{VoucherEntryID: uuid.NewString(), AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(500), EntryType: domain.Debit, CurrencyCode: "IRR"},
			{VoucherEntryID: uuid.NewString(), AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(500), EntryType: domain.Credit, CurrencyCode: "IRR"},
		},
	}
	return v
}

// --- CreateVoucher ---

func (suite *VoucherServiceTestSuite) TestCreateVoucher_Success() {
	ctx := context.Background()
	req := suite.createRequest()

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.companyID,
		[]string{suite.cashAccount.AccountID, suite.revenueAccount.AccountID}).
		Return(suite.accountsMap(), nil).Once()
	suite.mockSequencer.On("NextNumber", ctx, domain.DocumentTypeVoucher, suite.companyID, suite.userID).
		Return("VCH000001", nil).Once()
	suite.mockRepo.On("SaveVoucher", ctx, mock.AnythingOfType("domain.Voucher"), mock.AnythingOfType("[]domain.VoucherEntry")).
		Return(nil).Once()

	voucher, err := suite.service.CreateVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("VCH000001", voucher.VoucherNumber)
	suite.Equal(domain.VoucherDraft, voucher.Status)
	suite.False(voucher.IsPosted)
	suite.EqualValues(1, voucher.Version)
	suite.Len(voucher.Entries, 2)
	suite.True(voucher.IsBalanced())

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
	suite.mockSequencer.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_UnbalancedDraftIsAllowed() {
	ctx := context.Background()
	req := suite.createRequest()
	req.Entries[1].Amount = decimal.NewFromInt(300)

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.companyID, mock.Anything).
		Return(suite.accountsMap(), nil).Once()
	suite.mockSequencer.On("NextNumber", ctx, domain.DocumentTypeVoucher, suite.companyID, suite.userID).
		Return("VCH000002", nil).Once()
	suite.mockRepo.On("SaveVoucher", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	voucher, err := suite.service.CreateVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.VoucherDraft, voucher.Status)
	suite.False(voucher.IsBalanced())
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_RejectsSingleEntry() {
	req := suite.createRequest()
	req.Entries = req.Entries[:1]

	_, err := suite.service.CreateVoucher(context.Background(), suite.companyID, req, suite.userID)

	suite.ErrorIs(err, services.ErrVoucherMinEntries)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveVoucher")
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_RejectsSingleAccount() {
	req := suite.createRequest()
	req.Entries[1].AccountID = req.Entries[0].AccountID

	_, err := suite.service.CreateVoucher(context.Background(), suite.companyID, req, suite.userID)

	suite.ErrorIs(err, services.ErrVoucherMinAccounts)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_RejectsNonPositiveAmount() {
	req := suite.createRequest()
	req.Entries[0].Amount = decimal.Zero

	_, err := suite.service.CreateVoucher(context.Background(), suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_RejectsUnknownAccount() {
	ctx := context.Background()
	req := suite.createRequest()

	// Only the cash account resolves; the revenue account is missing.
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.companyID, mock.Anything).
		Return(map[string]domain.Account{suite.cashAccount.AccountID: suite.cashAccount}, nil).Once()

	_, err := suite.service.CreateVoucher(ctx, suite.companyID, req, suite.userID)

	suite.ErrorIs(err, services.ErrAccountNotFound)
	suite.mockSequencer.AssertNotCalled(suite.T(), "NextNumber")
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_RejectsCurrencyMismatch() {
	ctx := context.Background()
	req := suite.createRequest()

	usdAccount := suite.revenueAccount
	usdAccount.CurrencyCode = "USD"
	accounts := suite.accountsMap()
	accounts[usdAccount.AccountID] = usdAccount

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.companyID, mock.Anything).
		Return(accounts, nil).Once()

	_, err := suite.service.CreateVoucher(ctx, suite.companyID, req, suite.userID)

	suite.ErrorIs(err, services.ErrAccountCurrency)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_RejectsInactiveAccount() {
	ctx := context.Background()
	req := suite.createRequest()

	inactive := suite.cashAccount
	inactive.IsActive = false
	accounts := suite.accountsMap()
	accounts[inactive.AccountID] = inactive

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.companyID, mock.Anything).
		Return(accounts, nil).Once()

	_, err := suite.service.CreateVoucher(ctx, suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- GetVoucherByID ---

func (suite *VoucherServiceTestSuite) TestGetVoucherByID_ScopesToCompany() {
	ctx := context.Background()
	other := suite.storedVoucher(domain.VoucherDraft)
	other.CompanyID = uuid.NewString()

	suite.mockRepo.On("FindVoucherByID", ctx, other.VoucherID).Return(other, nil).Once()

	_, err := suite.service.GetVoucherByID(ctx, suite.companyID, other.VoucherID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Transitions ---

func (suite *VoucherServiceTestSuite) TestSubmitVoucher_Success() {
	ctx := context.Background()
	v := suite.storedVoucher(domain.VoucherDraft)

	suite.mockRepo.On("FindVoucherByID", ctx, v.VoucherID).Return(v, nil).Once()
	suite.mockRepo.On("UpdateVoucherStatus", ctx, mock.AnythingOfType("domain.Voucher")).Return(nil).Once()

	updated, err := suite.service.SubmitVoucher(ctx, suite.companyID, v.VoucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.VoucherPending, updated.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestSubmitVoucher_InvalidFromApproved() {
	ctx := context.Background()
	v := suite.storedVoucher(domain.VoucherApproved)

	suite.mockRepo.On("FindVoucherByID", ctx, v.VoucherID).Return(v, nil).Once()

	_, err := suite.service.SubmitVoucher(ctx, suite.companyID, v.VoucherID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateVoucherStatus")
}

func (suite *VoucherServiceTestSuite) TestTransition_RetriesOnStaleVersion() {
	ctx := context.Background()
	v1 := suite.storedVoucher(domain.VoucherPending)
	v2 := suite.storedVoucher(domain.VoucherPending)
	v2.VoucherID = v1.VoucherID
	v2.Version = 2

	suite.mockRepo.On("FindVoucherByID", ctx, v1.VoucherID).Return(v1, nil).Once()
	suite.mockRepo.On("UpdateVoucherStatus", ctx, mock.AnythingOfType("domain.Voucher")).Return(apperrors.ErrConflict).Once()
	suite.mockRepo.On("FindVoucherByID", ctx, v1.VoucherID).Return(v2, nil).Once()
	suite.mockRepo.On("UpdateVoucherStatus", ctx, mock.AnythingOfType("domain.Voucher")).Return(nil).Once()

	updated, err := suite.service.ApproveVoucher(ctx, suite.companyID, v1.VoucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.VoucherApproved, updated.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- PostVoucher ---

func (suite *VoucherServiceTestSuite) TestPostVoucher_WritesRowsAndBalances() {
	ctx := context.Background()
	v := suite.storedVoucher(domain.VoucherApproved)

	suite.mockRepo.On("FindVoucherByID", ctx, v.VoucherID).Return(v, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.companyID, mock.Anything).
		Return(suite.accountsMap(), nil).Once()

	var gotVoucher domain.Voucher
	var gotRows []domain.LedgerEntry
	var gotBalances map[string]decimal.Decimal
	suite.mockRepo.On("PostVoucher", ctx, mock.AnythingOfType("domain.Voucher"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotVoucher = args.Get(1).(domain.Voucher)
			gotRows = args.Get(2).([]domain.LedgerEntry)
			gotBalances = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	posted, err := suite.service.PostVoucher(ctx, suite.companyID, v.VoucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.VoucherPosted, posted.Status)
	suite.True(posted.IsPosted)
	suite.Equal(domain.VoucherPosted, gotVoucher.Status)

	// One balanced row per entry against the voucher document.
	suite.Require().Len(gotRows, 2)
	suite.Equal(v.VoucherNumber, gotRows[0].DocumentNumber)
	suite.Equal(domain.DocumentTypeVoucher, gotRows[0].DocumentType)
	suite.Equal("1100", gotRows[0].AccountCode)
	suite.True(gotRows[0].DebitAmount.Equal(decimal.NewFromInt(500)))
	suite.Equal("4000", gotRows[1].AccountCode)
	suite.True(gotRows[1].CreditAmount.Equal(decimal.NewFromInt(500)))

	// Debit to asset raises it; credit to revenue raises it too.
	suite.True(gotBalances[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(500)))
	suite.True(gotBalances[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(500)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_RejectsDraft() {
	ctx := context.Background()
	v := suite.storedVoucher(domain.VoucherDraft)

	suite.mockRepo.On("FindVoucherByID", ctx, v.VoucherID).Return(v, nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, v.VoucherID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockRepo.AssertNotCalled(suite.T(), "PostVoucher")
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_RejectsUnbalanced() {
	ctx := context.Background()
	v := suite.storedVoucher(domain.VoucherApproved)
	v.Entries[0].Amount = decimal.NewFromInt(700)

	suite.mockRepo.On("FindVoucherByID", ctx, v.VoucherID).Return(v, nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, v.VoucherID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- ListVouchers ---

func (suite *VoucherServiceTestSuite) TestListVouchers_DefaultsLimit() {
	ctx := context.Background()

	suite.mockRepo.On("ListVouchers", ctx, suite.companyID, (*domain.VoucherStatus)(nil), 20, 0).
		Return([]domain.Voucher{}, nil).Once()

	_, err := suite.service.ListVouchers(ctx, suite.companyID, dto.ListVouchersParams{})

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestVoucherServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VoucherServiceTestSuite))
}
