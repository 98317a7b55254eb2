// Package accounts resolves readable accounts and builds on-demand
// holdings reports for them.
package accounts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/domain"
)

// Resolver lists the accounts the credential may read. Results are never
// cached: access can change between calls.
type Resolver struct {
	provider domain.AccountsProvider
	log      zerolog.Logger
}

// NewResolver creates a new account resolver
func NewResolver(provider domain.AccountsProvider, log zerolog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		log:      log.With().Str("component", "account_resolver").Logger(),
	}
}

// Accessible returns every account whose access level is not NO_ACCESS, in
// provider order.
func (r *Resolver) Accessible(ctx context.Context) ([]domain.Account, error) {
	all, err := r.provider.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	out := make([]domain.Account, 0, len(all))
	for _, acc := range all {
		if acc.AccessLevel == domain.AccessLevelNoAccess {
			r.log.Debug().Str("account_id", acc.ID).Msg("Skipping account without access")
			continue
		}
		out = append(out, acc)
	}
	return out, nil
}

// ListAccessible returns the ids of the readable accounts.
func (r *Resolver) ListAccessible(ctx context.Context) ([]string, error) {
	accounts, err := r.Accessible(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(accounts))
	for i, acc := range accounts {
		ids[i] = acc.ID
	}
	return ids, nil
}
