package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridadvisor/gridadvisor/pkg/tariff"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

func TestAdviseBatteryCharge(t *testing.T) {
	cfg := types.DefaultRuleConfig()

	t.Run("off-peak charges to full target", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseBatteryCharge(&info, cfg, 50, now)
		require.True(t, adv.Recommend)
		assert.Equal(t, CommandBatteryCharge, adv.Command)
		assert.Equal(t, 90.0, adv.TargetSOC)
		assert.Equal(t, ReasonOffPeakChargeIsraeli, adv.Reason)
	})

	t.Run("off-peak non-israeli uses plain reason", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)
		tr := israeliTOU()
		tr.Provider = "ComEd"
		tr.Name = "Hourly"
		tr.Currency = "USD"
		info := tariff.Info(tr, cfg, now)
		adv := AdviseBatteryCharge(&info, cfg, 50, now)
		require.True(t, adv.Recommend)
		assert.Equal(t, ReasonOffPeakCharge, adv.Reason)
	})

	t.Run("off-peak already full does nothing", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseBatteryCharge(&info, cfg, 95, now)
		assert.False(t, adv.Recommend)
	})

	t.Run("shoulder does nothing at healthy SoC", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 10, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseBatteryCharge(&info, cfg, 50, now)
		assert.False(t, adv.Recommend)
	})

	t.Run("depleted battery tops up the reserve outside off-peak", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 10, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseBatteryCharge(&info, cfg, 15, now)
		require.True(t, adv.Recommend)
		assert.Equal(t, 30.0, adv.TargetSOC)
		assert.Equal(t, ReasonLowReserveCharge, adv.Reason)
	})
}

func TestAdviseBatteryDischarge(t *testing.T) {
	cfg := types.DefaultRuleConfig()

	t.Run("peak discharges to floor", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 19, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseBatteryDischarge(&info, cfg, 50, now)
		require.True(t, adv.Recommend)
		assert.Equal(t, CommandBatteryDischarge, adv.Command)
		assert.Equal(t, 20.0, adv.TargetSOC)
		assert.Equal(t, ReasonPeakDischarge, adv.Reason)
	})

	t.Run("peak but nearly empty does nothing", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 19, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseBatteryDischarge(&info, cfg, 25, now)
		assert.False(t, adv.Recommend)
	})

	t.Run("shoulder does nothing", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 10, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseBatteryDischarge(&info, cfg, 50, now)
		assert.False(t, adv.Recommend)
	})
}

func TestAdviseEVCharging(t *testing.T) {
	cfg := types.DefaultRuleConfig()

	t.Run("off-peak charges at full power", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseEVCharging(&info, cfg, now)
		assert.True(t, adv.ShouldCharge)
		assert.Equal(t, 11.0, adv.PowerKW)
		assert.Equal(t, ReasonEVOffPeakCharge, adv.Reason)
	})

	t.Run("shoulder charges at reduced power", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 10, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseEVCharging(&info, cfg, now)
		assert.True(t, adv.ShouldCharge)
		assert.Equal(t, 7.4, adv.PowerKW)
	})

	t.Run("peak delays until off-peak tonight", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 20, 0, 0, 0, time.UTC)
		info := tariff.Info(israeliTOU(), cfg, now)
		adv := AdviseEVCharging(&info, cfg, now)
		assert.False(t, adv.ShouldCharge)
		assert.Equal(t, time.Date(2025, time.July, 10, 23, 0, 0, 0, time.UTC), adv.RecommendedStart)
		assert.Equal(t, ReasonEVPeakDelay, adv.Reason)
	})

	t.Run("flat tariff charges now regardless of hour", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 20, 0, 0, 0, time.UTC)
		info := tariff.Info(types.Tariff{Name: "Flat", ImportRate: 0.3, Currency: "USD"}, cfg, now)
		adv := AdviseEVCharging(&info, cfg, now)
		assert.True(t, adv.ShouldCharge)
		assert.Equal(t, 11.0, adv.PowerKW)
		assert.Equal(t, ReasonEVFlatRateCharge, adv.Reason)
	})

	t.Run("non-israeli TOU charges now too", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 20, 0, 0, 0, time.UTC)
		tr := israeliTOU()
		tr.Provider = "ComEd"
		tr.Name = "Hourly"
		tr.Currency = "USD"
		info := tariff.Info(tr, cfg, now)
		adv := AdviseEVCharging(&info, cfg, now)
		assert.True(t, adv.ShouldCharge)
	})
}

func TestAdviseHeatPump(t *testing.T) {
	cfg := types.DefaultRuleConfig()

	cases := []struct {
		name    string
		hour    int
		mode    HeatPumpMode
		preheat bool
	}{
		{"off-peak boosts and preheats", 2, HeatPumpModeBoost, true},
		{"shoulder runs normal", 10, HeatPumpModeNormal, false},
		{"peak runs economy", 19, HeatPumpModeEconomy, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Date(2025, time.July, 10, tc.hour, 0, 0, 0, time.UTC)
			info := tariff.Info(israeliTOU(), cfg, now)
			adv := AdviseHeatPump(&info, cfg, now)
			assert.True(t, adv.ShouldRun, "heat pump never fully stops")
			assert.Equal(t, tc.mode, adv.Mode)
			assert.Equal(t, tc.preheat, adv.PreheatRecommended)
		})
	}

	t.Run("flat tariff always normal", func(t *testing.T) {
		now := time.Date(2025, time.July, 10, 19, 0, 0, 0, time.UTC)
		info := tariff.Info(types.Tariff{Name: "Flat", ImportRate: 0.3, Currency: "USD"}, cfg, now)
		adv := AdviseHeatPump(&info, cfg, now)
		assert.True(t, adv.ShouldRun)
		assert.Equal(t, HeatPumpModeNormal, adv.Mode)
	})
}
