package advisor

import (
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/tariff"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// BatteryAdvice is the result of a battery rule. When Recommend is false the
// other fields are zero.
type BatteryAdvice struct {
	Recommend bool
	Command   string
	TargetSOC float64
	Reason    Reason
}

// AdviseBatteryCharge decides whether a battery should charge given the
// tariff snapshot and its state of charge. Off-peak it charges toward the
// full target; outside off-peak it only tops up a depleted safety reserve.
func AdviseBatteryCharge(info *types.TariffInfo, cfg types.RuleConfig, soc float64, now time.Time) BatteryAdvice {
	if tariff.IsOffPeakHour(cfg, now) {
		if soc >= cfg.BatteryChargeTargetSOC {
			return BatteryAdvice{}
		}
		reason := ReasonOffPeakCharge
		if info != nil && info.IsIsraeli {
			reason = ReasonOffPeakChargeIsraeli
		}
		return BatteryAdvice{
			Recommend: true,
			Command:   CommandBatteryCharge,
			TargetSOC: cfg.BatteryChargeTargetSOC,
			Reason:    reason,
		}
	}
	if soc < cfg.BatteryReserveFloorSOC {
		return BatteryAdvice{
			Recommend: true,
			Command:   CommandBatteryCharge,
			TargetSOC: cfg.BatteryReserveTargetSOC,
			Reason:    ReasonLowReserveCharge,
		}
	}
	return BatteryAdvice{}
}

// AdviseBatteryDischarge decides whether a battery should discharge. Only
// during peak hours, and only while there's charge above the discharge
// floor.
func AdviseBatteryDischarge(info *types.TariffInfo, cfg types.RuleConfig, soc float64, now time.Time) BatteryAdvice {
	if !tariff.IsPeakHour(cfg, now) || soc <= cfg.BatteryDischargeMinSOC {
		return BatteryAdvice{}
	}
	return BatteryAdvice{
		Recommend: true,
		Command:   CommandBatteryDischarge,
		TargetSOC: cfg.BatteryDischargeTargetSOC,
		Reason:    ReasonPeakDischarge,
	}
}
