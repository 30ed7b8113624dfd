// Package quotes caches fetched prices for a short time so repeated
// refreshes do not hit the price sources again.
package quotes

import (
	"context"
	"time"

	"folio-backend/internal/domain"
)

// TTL is how long a quote stays servable after it was fetched.
const TTL = 300 * time.Second

// Cache stores quotes by key. Misses and backend errors both report false.
type Cache interface {
	Get(ctx context.Context, key string) (domain.Quote, bool)
	Set(ctx context.Context, key string, q domain.Quote)
}
