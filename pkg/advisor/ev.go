package advisor

import (
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/tariff"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// EVAdvice is the result of the EV charging rule.
type EVAdvice struct {
	ShouldCharge bool
	PowerKW      float64
	// RecommendedStart is set when charging should wait for a cheaper
	// window; zero when charging now.
	RecommendedStart time.Time
	Reason           Reason
}

// AdviseEVCharging decides when and how hard an EV should charge. The rule
// is only time-varying for Israeli time-of-use tariffs; any other tariff
// charges immediately at full power since waiting buys nothing.
func AdviseEVCharging(info *types.TariffInfo, cfg types.RuleConfig, now time.Time) EVAdvice {
	if info == nil || !info.IsTimeOfUse || !info.IsIsraeli {
		return EVAdvice{
			ShouldCharge: true,
			PowerKW:      cfg.EVFullPowerKW,
			Reason:       ReasonEVFlatRateCharge,
		}
	}
	switch tariff.PeriodForHour(cfg, now.Hour()) {
	case tariff.PeriodOffPeak:
		return EVAdvice{
			ShouldCharge: true,
			PowerKW:      cfg.EVFullPowerKW,
			Reason:       ReasonEVOffPeakCharge,
		}
	case tariff.PeriodShoulder:
		return EVAdvice{
			ShouldCharge: true,
			PowerKW:      cfg.EVReducedPowerKW,
			Reason:       ReasonEVShoulderCharge,
		}
	default:
		return EVAdvice{
			ShouldCharge:     false,
			RecommendedStart: tariff.NextChargeWindow(cfg, now).Start,
			Reason:           ReasonEVPeakDelay,
		}
	}
}
