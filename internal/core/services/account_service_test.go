package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/core/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, companyID, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasChildren(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockAccountRepository
	service   portssvc.AccountSvcFacade
	companyID string
	userID    string
	now       time.Time
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.now = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	suite.service = services.NewAccountService(suite.mockRepo, fixedClock{now: suite.now})
	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) account(code string) *domain.Account {
	return &domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  code,
		AccountName:  "Account " + code,
		AccountType:  domain.Asset,
		CurrencyCode: "IRR",
		IsActive:     true,
		CompanyID:    suite.companyID,
	}
}

// --- CreateAccount ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1100",
		AccountName:  "Cash on Hand",
		AccountType:  string(domain.Asset),
		CurrencyCode: "irr",
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.companyID, "1100").
		Return(nil, apperrors.ErrNotFound).Once()

	var saved domain.Account
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Account) }).
		Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("1100", account.AccountCode)
	suite.Equal("IRR", account.CurrencyCode)
	suite.True(account.IsActive)
	suite.True(account.Balance.IsZero())
	suite.Equal(suite.companyID, saved.CompanyID)
	suite.Equal(suite.userID, saved.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RejectsDuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1100",
		AccountName:  "Cash on Hand",
		AccountType:  string(domain.Asset),
		CurrencyCode: "IRR",
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.companyID, "1100").
		Return(suite.account("1100"), nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RejectsBlankCode() {
	req := dto.CreateAccountRequest{
		AccountCode:  "   ",
		AccountName:  "Cash on Hand",
		AccountType:  string(domain.Asset),
		CurrencyCode: "IRR",
	}

	_, err := suite.service.CreateAccount(context.Background(), suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountByCode")
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RejectsMissingParent() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:     "1110",
		AccountName:     "Petty Cash",
		AccountType:     string(domain.Asset),
		CurrencyCode:    "IRR",
		ParentAccountID: "no-such-parent",
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.companyID, "1110").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, "no-such-parent").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(ctx, suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RejectsForeignParent() {
	ctx := context.Background()
	parent := suite.account("1000")
	parent.CompanyID = uuid.NewString()
	req := dto.CreateAccountRequest{
		AccountCode:     "1110",
		AccountName:     "Petty Cash",
		AccountType:     string(domain.Asset),
		CurrencyCode:    "IRR",
		ParentAccountID: parent.AccountID,
	}

	suite.mockRepo.On("FindAccountByCode", ctx, suite.companyID, "1110").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, parent.AccountID).
		Return(parent, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.companyID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- GetAccountByID / GetAccountsByIDs ---

func (suite *AccountServiceTestSuite) TestGetAccountByID_ScopesToCompany() {
	ctx := context.Background()
	other := suite.account("2000")
	other.CompanyID = uuid.NewString()

	suite.mockRepo.On("FindAccountByID", ctx, other.AccountID).Return(other, nil).Once()

	_, err := suite.service.GetAccountByID(ctx, suite.companyID, other.AccountID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestGetAccountsByIDs_FiltersForeignCompanies() {
	ctx := context.Background()
	mine := suite.account("1100")
	foreign := suite.account("1200")
	foreign.CompanyID = uuid.NewString()
	ids := []string{mine.AccountID, foreign.AccountID}

	suite.mockRepo.On("FindAccountsByIDs", ctx, ids).
		Return(map[string]domain.Account{
			mine.AccountID:    *mine,
			foreign.AccountID: *foreign,
		}, nil).Once()

	accounts, err := suite.service.GetAccountsByIDs(ctx, suite.companyID, ids)

	suite.Require().NoError(err)
	suite.Len(accounts, 1)
	suite.Contains(accounts, mine.AccountID)
}

// --- UpdateAccount ---

func (suite *AccountServiceTestSuite) TestUpdateAccount_RenamesAccount() {
	ctx := context.Background()
	account := suite.account("1100")
	newName := "Main Cash"

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	var saved domain.Account
	suite.mockRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Account) }).
		Return(nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, suite.companyID, account.AccountID,
		dto.UpdateAccountRequest{AccountName: &newName}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("Main Cash", updated.AccountName)
	suite.Equal("Main Cash", saved.AccountName)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NoChangesSkipsWrite() {
	ctx := context.Background()
	account := suite.account("1100")

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, suite.companyID, account.AccountID,
		dto.UpdateAccountRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RejectsSelfParent() {
	ctx := context.Background()
	account := suite.account("1100")

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, suite.companyID, account.AccountID,
		dto.UpdateAccountRequest{ParentAccountID: &account.AccountID}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RejectsParentCycle() {
	ctx := context.Background()

	// grandparent <- parent <- account; re-parenting grandparent under
	// account would close the loop.
	account := suite.account("1000")
	parent := suite.account("1100")
	parent.ParentAccountID = account.AccountID

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, parent.AccountID).Return(parent, nil).Once()
	// Walking up from the proposed parent reaches the account itself.
	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, suite.companyID, account.AccountID,
		dto.UpdateAccountRequest{ParentAccountID: &parent.AccountID}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_AllowsDetachingToRoot() {
	ctx := context.Background()
	account := suite.account("1100")
	account.ParentAccountID = uuid.NewString()
	root := ""

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, suite.companyID, account.AccountID,
		dto.UpdateAccountRequest{ParentAccountID: &root}, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(updated.ParentAccountID)
}

// --- DeactivateAccount ---

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	account := suite.account("1100")

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("HasChildren", ctx, account.AccountID).Return(false, nil).Once()
	var saved domain.Account
	suite.mockRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Account) }).
		Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.companyID, account.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.False(saved.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_RefusedWithChildren() {
	ctx := context.Background()
	account := suite.account("1100")

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("HasChildren", ctx, account.AccountID).Return(true, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.companyID, account.AccountID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
