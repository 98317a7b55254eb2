package tinkoff

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/investsync/internal/domain"
)

const (
	usersService      = "UsersService"
	operationsService = "OperationsService"
)

// GetAccounts lists every account visible to the token.
func (c *Client) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	var resp accountsResponse
	if err := c.invoke(ctx, usersService, "GetAccounts", struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return transformAccounts(resp.Accounts), nil
}

// GetPortfolio returns the holdings of an account.
func (c *Client) GetPortfolio(ctx context.Context, accountID string) ([]domain.PortfolioPosition, error) {
	var resp portfolioResponse
	if err := c.invoke(ctx, operationsService, "GetPortfolio", accountRequest{AccountID: accountID}, &resp); err != nil {
		return nil, fmt.Errorf("failed to get portfolio for %s: %w", accountID, err)
	}
	return transformPortfolio(resp.Positions), nil
}

// GetOperations returns the operations of an account in [from, to].
func (c *Client) GetOperations(ctx context.Context, accountID string, from, to time.Time) ([]domain.Operation, error) {
	req := operationsRequest{
		AccountID: accountID,
		From:      from.UTC(),
		To:        to.UTC(),
		State:     "OPERATION_STATE_UNSPECIFIED",
	}

	var resp operationsResponse
	if err := c.invoke(ctx, operationsService, "GetOperations", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get operations for %s: %w", accountID, err)
	}
	return transformOperations(resp.Operations), nil
}

// GetPositions returns the cash balances of an account.
func (c *Client) GetPositions(ctx context.Context, accountID string) (*domain.Positions, error) {
	var resp positionsResponse
	if err := c.invoke(ctx, operationsService, "GetPositions", accountRequest{AccountID: accountID}, &resp); err != nil {
		return nil, fmt.Errorf("failed to get positions for %s: %w", accountID, err)
	}
	return &domain.Positions{
		Money:   transformMoney(resp.Money),
		Blocked: transformMoney(resp.Blocked),
	}, nil
}

var _ domain.Provider = (*Client)(nil)
