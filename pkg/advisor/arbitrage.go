package advisor

import (
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/tariff"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// ArbitrageSavings estimates the value of one full battery cycle charged at
// cheapRate and discharged at currentRate, accounting for round-trip losses
// on the charge side. Only the configured usable fraction of capacity
// counts. The result can be negative; callers decide what to do with that.
func ArbitrageSavings(cfg types.RuleConfig, capacityKWH, efficiency, currentRate, cheapRate float64) float64 {
	usable := capacityKWH * cfg.UsableCapacityFraction
	return usable * (currentRate - cheapRate/efficiency)
}

// ArbitrageProfitable reports whether charging off-peak and discharging at
// peak beats the configured round-trip losses for the current season. Only
// Israeli time-of-use schedules qualify; everything else is not worth
// cycling the battery for.
func ArbitrageProfitable(info *types.TariffInfo, cfg types.RuleConfig, now time.Time) bool {
	if info == nil || !info.IsTimeOfUse || !info.IsIsraeli || info.Schedule == nil {
		return false
	}
	rates, ok := (*info.Schedule)[tariff.SeasonForMonth(now.Month())]
	if !ok {
		return false
	}
	return rates.Peak > rates.OffPeak/cfg.RoundTripEfficiency
}
