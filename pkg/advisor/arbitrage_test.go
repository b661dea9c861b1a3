package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gridadvisor/gridadvisor/pkg/tariff"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

func TestArbitrageSavings(t *testing.T) {
	cfg := types.DefaultRuleConfig()

	// 10 kWh at 80% usable, charge at 0.25 with 90% efficiency, discharge
	// at 0.53
	got := ArbitrageSavings(cfg, 10, 0.9, 0.53, 0.25)
	assert.InDelta(t, 8*(0.53-0.25/0.9), got, 1e-9)
	assert.InDelta(t, 1.982, got, 0.001)

	// negative when the spread doesn't cover the losses
	got = ArbitrageSavings(cfg, 10, 0.85, 0.25, 0.24)
	assert.Less(t, got, 0.0)
}

func TestArbitrageProfitable(t *testing.T) {
	cfg := types.DefaultRuleConfig()
	summer := time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC)

	t.Run("profitable israeli TOU", func(t *testing.T) {
		info := tariff.Info(israeliTOU(), cfg, summer)
		// 0.53 > 0.25/0.85
		assert.True(t, ArbitrageProfitable(&info, cfg, summer))
	})

	t.Run("not profitable when spread too small", func(t *testing.T) {
		tr := israeliTOU()
		schedule := types.TariffSchedule{
			types.SeasonSummer: {Peak: 0.28, Shoulder: 0.27, OffPeak: 0.25},
		}
		tr.Schedule = &schedule
		info := tariff.Info(tr, cfg, summer)
		// 0.28 < 0.25/0.85
		assert.False(t, ArbitrageProfitable(&info, cfg, summer))
	})

	t.Run("false for non-israeli tariff", func(t *testing.T) {
		tr := israeliTOU()
		tr.Provider = "ComEd"
		tr.Name = "Hourly"
		tr.Currency = "USD"
		info := tariff.Info(tr, cfg, summer)
		assert.False(t, ArbitrageProfitable(&info, cfg, summer))
	})

	t.Run("false for flat tariff", func(t *testing.T) {
		info := tariff.Info(types.Tariff{Name: "Flat", ImportRate: 0.3, Currency: "ILS"}, cfg, summer)
		assert.False(t, ArbitrageProfitable(&info, cfg, summer))
	})

	t.Run("false for nil info", func(t *testing.T) {
		assert.False(t, ArbitrageProfitable(nil, cfg, summer))
	})

	t.Run("false when schedule missing season", func(t *testing.T) {
		tr := israeliTOU()
		schedule := types.TariffSchedule{
			types.SeasonWinter: {Peak: 0.51, Shoulder: 0.43, OffPeak: 0.26},
		}
		tr.Schedule = &schedule
		info := tariff.Info(tr, cfg, summer)
		assert.False(t, ArbitrageProfitable(&info, cfg, summer))
	})
}
