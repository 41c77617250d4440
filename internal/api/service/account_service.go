package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/account"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
	}
}

// CreateAccount creates a new account, checking for duplicate names
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, name string, currency string, openingBalance decimal.Decimal) (*account.Account, error) {
	existingAccount, err := s.accountRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existingAccount != nil {
		return nil, account.ErrDuplicateName{Name: name}
	}

	acc, err := account.NewAccount(name, currency, openingBalance)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// GetAccountByID retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// ListAccounts returns all accounts
func (s *AccountServiceImpl) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	return s.accountRepo.List(ctx)
}

// ClearUnverified removes the unverified marker after an operator has
// reconciled the balance by hand
func (s *AccountServiceImpl) ClearUnverified(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !acc.Unverified {
		return acc, nil
	}

	acc.ClearUnverified()
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}
