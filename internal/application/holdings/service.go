package holdings

import (
	"context"
	"fmt"

	"folio-backend/internal/domain"
	"folio-backend/internal/pkg/validation"

	"github.com/rs/zerolog"
)

type Store interface {
	ListHoldings(ctx context.Context, userID uint) ([]domain.Holding, error)
	GetHolding(ctx context.Context, userID, id uint) (*domain.Holding, error)
	FindBySymbol(ctx context.Context, userID uint, class domain.AssetClass, symbol string) (*domain.Holding, error)
	SaveHolding(ctx context.Context, h *domain.Holding) error
	DeleteHolding(ctx context.Context, userID, id uint) error
}

// Trigger re-prices and snapshots a user after their holdings change.
type Trigger interface {
	RefreshAndSnapshot(ctx context.Context, userID uint) (int, error)
}

// Service encapsulates holdings operations.
type Service struct {
	Store   Store
	Trigger Trigger
	Logger  zerolog.Logger
}

// AddInput is a purchase or balance entry.
type AddInput struct {
	AssetClass string  `json:"asset_class"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	AvgCost    float64 `json:"avg_cost"`
	// Price is the current value for insurance, which has no market quote.
	Price float64 `json:"price"`
}

// UpdateInput overwrites the editable fields of a holding. Nil fields are kept.
type UpdateInput struct {
	Name     *string  `json:"name"`
	Quantity *float64 `json:"quantity"`
	AvgCost  *float64 `json:"avg_cost"`
	Price    *float64 `json:"price"`
}

// Result is a changed holding plus the outcome of the follow-up refresh.
// SnapshotErr is set when the change was saved but the snapshot failed.
type Result struct {
	Holding     *domain.Holding
	Updated     int
	SnapshotErr error
}

func (s *Service) List(ctx context.Context, userID uint) ([]domain.Holding, error) {
	return s.Store.ListHoldings(ctx, userID)
}

// Add creates a holding or merges into the existing one for the same symbol.
func (s *Service) Add(ctx context.Context, userID uint, in AddInput) (*Result, error) {
	class, err := domain.ParseAssetClass(in.AssetClass)
	if err != nil {
		return nil, err
	}
	symbol := domain.NormalizeSymbol(class, in.Symbol)
	if symbol == "" && class == domain.Cash {
		symbol = "JPY"
	}
	if err := validateAdd(class, symbol, in); err != nil {
		return nil, err
	}

	incoming := domain.Holding{
		UserID:      userID,
		AssetClass:  class,
		Symbol:      symbol,
		DisplayName: in.Name,
		Quantity:    in.Quantity,
		AvgCost:     in.AvgCost,
	}
	if class == domain.Insurance {
		incoming.LastPrice = in.Price
	}
	if incoming.DisplayName == "" {
		incoming.DisplayName = defaultName(class, symbol)
	}

	existing, err := s.Store.FindBySymbol(ctx, userID, class, symbol)
	if err != nil {
		return nil, err
	}
	h := &incoming
	if existing != nil {
		existing.Merge(incoming)
		h = existing
	}
	if err := s.Store.SaveHolding(ctx, h); err != nil {
		return nil, err
	}
	s.Logger.Info().Uint("user_id", userID).Str("asset_class", string(class)).Str("symbol", symbol).Bool("merged", existing != nil).Msg("holding saved")
	return s.afterChange(ctx, userID, h), nil
}

// Update edits a holding in place.
func (s *Service) Update(ctx context.Context, userID, id uint, in UpdateInput) (*Result, error) {
	h, err := s.Store.GetHolding(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if !validation.IsValidDisplayName(*in.Name) {
			return nil, fmt.Errorf("%w: name too long", domain.ErrInvalidHolding)
		}
		h.DisplayName = *in.Name
	}
	for _, v := range []*float64{in.Quantity, in.AvgCost, in.Price} {
		if v != nil && !validation.IsValidAmount(*v) {
			return nil, fmt.Errorf("%w: amounts must be non-negative numbers", domain.ErrInvalidHolding)
		}
	}
	if in.Quantity != nil {
		h.Quantity = *in.Quantity
	}
	if in.AvgCost != nil {
		h.AvgCost = *in.AvgCost
	}
	if in.Price != nil && h.AssetClass == domain.Insurance {
		h.LastPrice = *in.Price
	}
	if err := s.Store.SaveHolding(ctx, h); err != nil {
		return nil, err
	}
	return s.afterChange(ctx, userID, h), nil
}

func (s *Service) Delete(ctx context.Context, userID, id uint) (*Result, error) {
	if err := s.Store.DeleteHolding(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.afterChange(ctx, userID, nil), nil
}

func (s *Service) afterChange(ctx context.Context, userID uint, h *domain.Holding) *Result {
	res := &Result{Holding: h}
	if s.Trigger == nil {
		return res
	}
	n, err := s.Trigger.RefreshAndSnapshot(ctx, userID)
	res.Updated = n
	if err != nil {
		s.Logger.Error().Err(err).Uint("user_id", userID).Msg("refresh after holding change failed")
		res.SnapshotErr = err
	}
	return res
}

func validateAdd(class domain.AssetClass, symbol string, in AddInput) error {
	if !validation.IsValidSymbol(symbol) {
		return fmt.Errorf("%w: invalid symbol %q", domain.ErrInvalidHolding, in.Symbol)
	}
	if !domain.IsSupportedSymbol(class, symbol) {
		return fmt.Errorf("%w: %s %q", domain.ErrUnsupportedSymbol, class, symbol)
	}
	if !validation.IsValidAmount(in.Quantity) || !validation.IsValidAmount(in.AvgCost) || !validation.IsValidAmount(in.Price) {
		return fmt.Errorf("%w: amounts must be non-negative numbers", domain.ErrInvalidHolding)
	}
	if !validation.IsValidDisplayName(in.Name) {
		return fmt.Errorf("%w: name too long", domain.ErrInvalidHolding)
	}
	return nil
}

func defaultName(class domain.AssetClass, symbol string) string {
	switch class {
	case domain.Crypto:
		if n, ok := domain.SupportedCrypto[symbol]; ok {
			return n
		}
	case domain.Cash:
		return "現金"
	}
	return symbol
}
