package advisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridadvisor/gridadvisor/pkg/tariff"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

func israeliTOU() types.Tariff {
	schedule := types.TariffSchedule{
		types.SeasonSummer: {Peak: 0.53, Shoulder: 0.45, OffPeak: 0.25},
		types.SeasonAutumn: {Peak: 0.44, Shoulder: 0.40, OffPeak: 0.24},
		types.SeasonSpring: {Peak: 0.44, Shoulder: 0.40, OffPeak: 0.24},
		types.SeasonWinter: {Peak: 0.51, Shoulder: 0.43, OffPeak: 0.26},
	}
	return types.Tariff{
		ID:          "iec-taoz",
		Name:        "IEC TAOZ Residential",
		Provider:    "Israel Electric Corporation",
		ImportRate:  0.48,
		ExportRate:  0.23,
		IsTimeOfUse: true,
		Schedule:    &schedule,
		Currency:    "ILS",
	}
}

// staticSource serves a fixed tariff snapshot, or nothing at all.
type staticSource struct {
	tariff *types.Tariff
	cfg    types.RuleConfig
}

func (s *staticSource) TariffInfo(_ context.Context, _ string, now time.Time) *types.TariffInfo {
	if s.tariff == nil {
		return nil
	}
	info := tariff.Info(*s.tariff, s.cfg, now)
	return &info
}

func floatPtr(f float64) *float64 { return &f }

func testFleet() []types.Device {
	return []types.Device{
		{ID: "bat-1", Type: types.DeviceTypeBatteryStorage, Readings: types.DeviceReadings{SOC: floatPtr(42)}},
		{ID: "ev-1", Type: types.DeviceTypeEVCharger},
		{ID: "hp-1", Type: types.DeviceTypeHeatPump},
		{ID: "inv-1", Type: types.DeviceTypeSolarInverter},
		{ID: "gw-1", Type: types.DeviceTypeGateway},
	}
}

func byDevice(set types.RecommendationSet) map[string]types.Recommendation {
	out := make(map[string]types.Recommendation, len(set.Recommendations))
	for _, r := range set.Recommendations {
		out[r.DeviceID] = r
	}
	return out
}

func TestGenerateNoTariff(t *testing.T) {
	cfg := types.DefaultRuleConfig()
	a := New(&staticSource{cfg: cfg}, cfg)
	now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)

	set := a.Generate(context.Background(), "site1", testFleet(), nil, now)
	assert.Equal(t, "site1", set.SiteID)
	assert.Equal(t, now, set.GeneratedAt)
	assert.NotNil(t, set.Recommendations)
	assert.Empty(t, set.Recommendations)
	assert.Equal(t, NoTariffReasoning, set.Reasoning)
	assert.Zero(t, set.PredictedSavings)
}

func TestGenerateOffPeakFleet(t *testing.T) {
	cfg := types.DefaultRuleConfig()
	tr := israeliTOU()
	a := New(&staticSource{tariff: &tr, cfg: cfg}, cfg)
	now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)

	set := a.Generate(context.Background(), "site1", testFleet(), nil, now)
	recs := byDevice(set)
	require.Len(t, recs, 3, "inverter and gateway get no commands")

	bat := recs["bat-1"]
	assert.Equal(t, CommandBatteryCharge, bat.Command)
	assert.Equal(t, 90.0, bat.Params["targetSOC"])
	assert.Equal(t, PriorityBattery, bat.Priority)
	assert.Equal(t, now, bat.ScheduledTime)

	ev := recs["ev-1"]
	assert.Equal(t, CommandEVStartCharging, ev.Command)
	assert.Equal(t, 11.0, ev.Params["powerKW"])
	assert.Equal(t, PriorityEV, ev.Priority)

	hp := recs["hp-1"]
	assert.Equal(t, CommandHeatPumpSetMode, hp.Command)
	assert.Equal(t, "boost", hp.Params["mode"])
	assert.Equal(t, true, hp.Params["preheat"])
	assert.Equal(t, PriorityHeatPump, hp.Priority)

	// off-peak rate 0.25 vs import rate 0.48 over the assumed daily load
	assert.InDelta(t, (0.48-0.25)*15, set.PredictedSavings, 1e-9)
	assert.Equal(t, 0.8, set.ConfidenceScore)
	assert.Contains(t, set.Reasoning, "IEC TAOZ Residential")
	assert.Contains(t, set.Reasoning, "TAOZ")
}

func TestGeneratePeakFleet(t *testing.T) {
	cfg := types.DefaultRuleConfig()
	tr := israeliTOU()
	a := New(&staticSource{tariff: &tr, cfg: cfg}, cfg)
	now := time.Date(2025, time.July, 10, 19, 0, 0, 0, time.UTC)

	set := a.Generate(context.Background(), "site1", testFleet(), nil, now)
	recs := byDevice(set)
	require.Len(t, recs, 3)

	bat := recs["bat-1"]
	assert.Equal(t, CommandBatteryDischarge, bat.Command)
	assert.Equal(t, 20.0, bat.Params["targetSOC"])

	ev := recs["ev-1"]
	assert.Equal(t, CommandEVDelayCharging, ev.Command)
	wantStart := time.Date(2025, time.July, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, wantStart.Format(time.RFC3339), ev.Params["recommendedStartTime"])
	assert.Equal(t, wantStart, ev.ScheduledTime)

	hp := recs["hp-1"]
	assert.Equal(t, "economy", hp.Params["mode"])

	// peak rate is above the flat import rate, so no predicted savings
	assert.Zero(t, set.PredictedSavings)
	assert.Equal(t, 0.8, set.ConfidenceScore)
}

func TestGenerateSOCOverride(t *testing.T) {
	cfg := types.DefaultRuleConfig()
	tr := israeliTOU()
	a := New(&staticSource{tariff: &tr, cfg: cfg}, cfg)
	now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)

	// device reports 42% but the caller overrides with 95%, above the charge
	// target, so no battery command comes back
	set := a.Generate(context.Background(), "site1", testFleet(), floatPtr(95), now)
	recs := byDevice(set)
	_, ok := recs["bat-1"]
	assert.False(t, ok)
	assert.Contains(t, recs, "ev-1")
}

func TestGenerateSkipsUnreadableBattery(t *testing.T) {
	cfg := types.DefaultRuleConfig()
	tr := israeliTOU()
	a := New(&staticSource{tariff: &tr, cfg: cfg}, cfg)
	now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)

	devices := []types.Device{
		{ID: "bat-1", Type: types.DeviceTypeBatteryStorage},
	}
	set := a.Generate(context.Background(), "site1", devices, nil, now)
	assert.Empty(t, set.Recommendations)
}

func TestGenerateSkipsUnknownType(t *testing.T) {
	cfg := types.DefaultRuleConfig()
	tr := israeliTOU()
	a := New(&staticSource{tariff: &tr, cfg: cfg}, cfg)
	now := time.Date(2025, time.July, 10, 2, 0, 0, 0, time.UTC)

	devices := []types.Device{
		{ID: "x-1", Type: types.DeviceType("washing_machine")},
	}
	set := a.Generate(context.Background(), "site1", devices, nil, now)
	assert.Empty(t, set.Recommendations)
	assert.NotEmpty(t, set.Reasoning, "tariff line is still reported")
}

func TestGenerateFlatTariff(t *testing.T) {
	cfg := types.DefaultRuleConfig()
	flat := types.Tariff{ID: "flat", Name: "Standard", ImportRate: 0.30, Currency: "USD"}
	a := New(&staticSource{tariff: &flat, cfg: cfg}, cfg)
	now := time.Date(2025, time.July, 10, 19, 0, 0, 0, time.UTC)

	set := a.Generate(context.Background(), "site1", testFleet(), nil, now)
	recs := byDevice(set)

	// flat tariffs have no peak, so the battery still discharges on the
	// hour-of-day window but the EV charges immediately
	ev := recs["ev-1"]
	assert.Equal(t, CommandEVStartCharging, ev.Command)

	hp := recs["hp-1"]
	assert.Equal(t, "normal", hp.Params["mode"])

	assert.Zero(t, set.PredictedSavings, "no savings estimate without time-of-use pricing")
}
