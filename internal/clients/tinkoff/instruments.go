package tinkoff

import (
	"context"
	"fmt"

	"github.com/aristath/investsync/internal/domain"
)

const instrumentsService = "InstrumentsService"

func statusOrBase(status domain.InstrumentStatus) string {
	if status == "" {
		return string(domain.InstrumentStatusBase)
	}
	return string(status)
}

// Shares lists shares with the given status filter.
func (c *Client) Shares(ctx context.Context, status domain.InstrumentStatus) ([]domain.Share, error) {
	var resp sharesResponse
	if err := c.invoke(ctx, instrumentsService, "Shares", instrumentsRequest{InstrumentStatus: statusOrBase(status)}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return transformShares(resp.Instruments), nil
}

// Bonds lists bonds with the given status filter.
func (c *Client) Bonds(ctx context.Context, status domain.InstrumentStatus) ([]domain.Bond, error) {
	var resp bondsResponse
	if err := c.invoke(ctx, instrumentsService, "Bonds", instrumentsRequest{InstrumentStatus: statusOrBase(status)}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}
	return transformBonds(resp.Instruments), nil
}

// ETFs lists exchange traded funds with the given status filter.
func (c *Client) ETFs(ctx context.Context, status domain.InstrumentStatus) ([]domain.ETF, error) {
	var resp etfsResponse
	if err := c.invoke(ctx, instrumentsService, "Etfs", instrumentsRequest{InstrumentStatus: statusOrBase(status)}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list etfs: %w", err)
	}
	return transformETFs(resp.Instruments), nil
}

// Futures lists futures with the given status filter.
func (c *Client) Futures(ctx context.Context, status domain.InstrumentStatus) ([]domain.Future, error) {
	var resp futuresResponse
	if err := c.invoke(ctx, instrumentsService, "Futures", instrumentsRequest{InstrumentStatus: statusOrBase(status)}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list futures: %w", err)
	}
	return transformFutures(resp.Instruments), nil
}
