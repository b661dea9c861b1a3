package advisor

import (
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/tariff"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// HeatPumpMode is the operating mode recommended for a heat pump.
type HeatPumpMode string

const (
	HeatPumpModeBoost   HeatPumpMode = "boost"
	HeatPumpModeNormal  HeatPumpMode = "normal"
	HeatPumpModeEconomy HeatPumpMode = "economy"
)

// HeatPumpAdvice is the result of the heat pump rule. The heat pump always
// keeps running; only the mode changes with the pricing period.
type HeatPumpAdvice struct {
	ShouldRun          bool
	Mode               HeatPumpMode
	PreheatRecommended bool
	Reason             Reason
}

// AdviseHeatPump picks the heat pump operating mode for the current pricing
// period. Off-peak pre-heats in boost mode, peak drops to economy, anything
// else (including flat-rate and non-Israeli tariffs) runs normally.
func AdviseHeatPump(info *types.TariffInfo, cfg types.RuleConfig, now time.Time) HeatPumpAdvice {
	if info == nil || !info.IsTimeOfUse || !info.IsIsraeli {
		return HeatPumpAdvice{ShouldRun: true, Mode: HeatPumpModeNormal, Reason: ReasonHeatPumpNormal}
	}
	switch tariff.PeriodForHour(cfg, now.Hour()) {
	case tariff.PeriodOffPeak:
		return HeatPumpAdvice{
			ShouldRun:          true,
			Mode:               HeatPumpModeBoost,
			PreheatRecommended: true,
			Reason:             ReasonHeatPumpBoost,
		}
	case tariff.PeriodShoulder:
		return HeatPumpAdvice{ShouldRun: true, Mode: HeatPumpModeNormal, Reason: ReasonHeatPumpNormal}
	default:
		return HeatPumpAdvice{ShouldRun: true, Mode: HeatPumpModeEconomy, Reason: ReasonHeatPumpEconomy}
	}
}
