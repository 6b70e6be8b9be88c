package testhelpers

import (
	"context"

	"treats/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockTransferService is a mock implementation of TransferService
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) GiveTreats(ctx context.Context, senderID, subjectID string, amount int64) (*entities.GiveResult, error) {
	args := m.Called(ctx, senderID, subjectID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GiveResult), args.Error(1)
}

// MockCreditService is a mock implementation of CreditService
type MockCreditService struct {
	mock.Mock
}

func (m *MockCreditService) PurchaseTreats(ctx context.Context, userID string, amount int64, description, externalReference string) (*entities.PurchaseResult, error) {
	args := m.Called(ctx, userID, amount, description, externalReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PurchaseResult), args.Error(1)
}

func (m *MockCreditService) GrantDailyBonus(ctx context.Context, userID string, amount int64) (*entities.PurchaseResult, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PurchaseResult), args.Error(1)
}

// MockLeaderboardService is a mock implementation of LeaderboardService
type MockLeaderboardService struct {
	mock.Mock
}

func (m *MockLeaderboardService) GetLeaderboard(ctx context.Context, period entities.LeaderboardPeriod) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

// MockAccountService is a mock implementation of AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) EnsureAccount(ctx context.Context, id string) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id string) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountService) GetHistory(ctx context.Context, id string, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}
