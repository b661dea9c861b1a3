package types

// RuleConfig collects the tunable constants used by the tariff classifier
// and the dispatch rules. These were historically scattered literals; they
// are grouped here so deployments can override them and tests can pin them.
type RuleConfig struct {
	// Pricing period boundaries, as local hours of the day. Peak is
	// [PeakStartHour, PeakEndHour); off-peak is hours >= OffPeakStartHour
	// or < OffPeakEndHour; everything else is shoulder.
	PeakStartHour    int `json:"peakStartHour"`
	PeakEndHour      int `json:"peakEndHour"`
	OffPeakStartHour int `json:"offPeakStartHour"`
	OffPeakEndHour   int `json:"offPeakEndHour"`

	// UsableCapacityFraction is the fraction of nameplate battery capacity
	// assumed cyclable for arbitrage.
	UsableCapacityFraction float64 `json:"usableCapacityFraction"`
	// RoundTripEfficiency is the assumed battery round-trip efficiency when
	// judging arbitrage profitability.
	RoundTripEfficiency float64 `json:"roundTripEfficiency"`

	// Battery SoC targets and thresholds, in percent.
	BatteryChargeTargetSOC    float64 `json:"batteryChargeTargetSOC"`
	BatteryReserveTargetSOC   float64 `json:"batteryReserveTargetSOC"`
	BatteryReserveFloorSOC    float64 `json:"batteryReserveFloorSOC"`
	BatteryDischargeTargetSOC float64 `json:"batteryDischargeTargetSOC"`
	BatteryDischargeMinSOC    float64 `json:"batteryDischargeMinSOC"`

	// EV charge power levels in kW.
	EVFullPowerKW    float64 `json:"evFullPowerKW"`
	EVReducedPowerKW float64 `json:"evReducedPowerKW"`

	// AssumedDailyConsumptionKWH feeds the coarse savings estimate.
	AssumedDailyConsumptionKWH float64 `json:"assumedDailyConsumptionKWH"`
	// ConfidenceScore is reported on every recommendation set. It is a
	// fixed placeholder, not derived from data.
	ConfidenceScore float64 `json:"confidenceScore"`
}

// DefaultRuleConfig returns the standard rule constants.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		PeakStartHour:    17,
		PeakEndHour:      22,
		OffPeakStartHour: 23,
		OffPeakEndHour:   7,

		UsableCapacityFraction: 0.8,
		RoundTripEfficiency:    0.85,

		BatteryChargeTargetSOC:    90,
		BatteryReserveTargetSOC:   30,
		BatteryReserveFloorSOC:    20,
		BatteryDischargeTargetSOC: 20,
		BatteryDischargeMinSOC:    30,

		EVFullPowerKW:    11,
		EVReducedPowerKW: 7.4,

		AssumedDailyConsumptionKWH: 15,
		ConfidenceScore:            0.8,
	}
}
