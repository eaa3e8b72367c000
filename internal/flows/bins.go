package flows

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"wms/internal/api"
	"wms/internal/models"
)

// BinsAPI is the part of the transport used by the bin flows.
type BinsAPI interface {
	GetBins(ctx context.Context) ([]models.Bin, error)
	GetBin(ctx context.Context, id int64) (models.BinDetails, error)
}

// BinListFlow loads the full bin list. Every fetch replaces the previous
// result wholesale.
type BinListFlow struct {
	api BinsAPI
	log *zap.Logger
	f   *fetcher[[]models.Bin]
}

func NewBinListFlow(a BinsAPI, log *zap.Logger) *BinListFlow {
	if log == nil {
		log = zap.NewNop()
	}
	return &BinListFlow{api: a, log: log, f: newFetcher[[]models.Bin]()}
}

func (b *BinListFlow) State() *Observable[Fetch[[]models.Bin]] { return b.f.state }

// Fetch reloads the list. The channel receives the terminal state once.
func (b *BinListFlow) Fetch(ctx context.Context) <-chan Fetch[[]models.Bin] {
	return b.f.run(ctx, func(ctx context.Context) ([]models.Bin, error) {
		bins, err := b.api.GetBins(ctx)
		if err != nil {
			b.log.Warn("❌ Failed to fetch bins", zap.Error(err))
			return nil, err
		}
		b.log.Debug("✅ Bins fetched", zap.Int("count", len(bins)))
		return bins, nil
	}, describeBinFailure)
}

// BinDetailsFlow loads one bin. A fetch for another id supersedes the one in
// flight.
type BinDetailsFlow struct {
	api BinsAPI
	log *zap.Logger
	f   *fetcher[models.BinDetails]
}

func NewBinDetailsFlow(a BinsAPI, log *zap.Logger) *BinDetailsFlow {
	if log == nil {
		log = zap.NewNop()
	}
	return &BinDetailsFlow{api: a, log: log, f: newFetcher[models.BinDetails]()}
}

func (b *BinDetailsFlow) State() *Observable[Fetch[models.BinDetails]] { return b.f.state }

func (b *BinDetailsFlow) Fetch(ctx context.Context, id int64) <-chan Fetch[models.BinDetails] {
	return b.f.run(ctx, func(ctx context.Context) (models.BinDetails, error) {
		bin, err := b.api.GetBin(ctx, id)
		if err != nil {
			b.log.Warn("❌ Failed to fetch bin", zap.Int64("bin_id", id), zap.Error(err))
		}
		return bin, err
	}, describeBinFailure)
}

func describeBinFailure(err error) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("Request failed: %d", httpErr.StatusCode)
	}
	return "Error: " + err.Error()
}
