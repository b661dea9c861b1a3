package tariff

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/log"
	"github.com/gridadvisor/gridadvisor/pkg/storage"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// Source resolves the tariff snapshot for a site at a point in time. A nil
// snapshot means the site has no usable tariff; implementations must not
// surface lookup failures as errors the advisor has to handle.
type Source interface {
	TariffInfo(ctx context.Context, siteID string, now time.Time) *types.TariffInfo
}

// StoreSource reads tariffs from the database and fails closed: a missing
// tariff and a lookup error both come back as nil, with errors logged here.
type StoreSource struct {
	DB  storage.Database
	Cfg types.RuleConfig
}

var _ Source = (*StoreSource)(nil)

func (s *StoreSource) TariffInfo(ctx context.Context, siteID string, now time.Time) *types.TariffInfo {
	t, err := s.DB.GetTariff(ctx, siteID)
	if err != nil {
		if !errors.Is(err, storage.ErrTariffNotFound) {
			log.Ctx(ctx).ErrorContext(ctx, "tariff lookup failed", slog.String("siteID", siteID), slog.Any("error", err))
		}
		return nil
	}
	info := Info(t, s.Cfg, now)
	return &info
}
