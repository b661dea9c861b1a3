package advisor

import (
	"fmt"

	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// Reason is a structured code for why a rule recommended an action. Rules
// return codes; the narrative text is rendered only at the aggregation
// boundary so the decision functions stay free of presentation strings.
type Reason string

const (
	ReasonOffPeakCharge        Reason = "off_peak_charge"
	ReasonOffPeakChargeIsraeli Reason = "off_peak_charge_israeli"
	ReasonLowReserveCharge     Reason = "low_reserve_charge"
	ReasonPeakDischarge        Reason = "peak_discharge"

	ReasonEVOffPeakCharge  Reason = "ev_off_peak_charge"
	ReasonEVShoulderCharge Reason = "ev_shoulder_charge"
	ReasonEVPeakDelay      Reason = "ev_peak_delay"
	ReasonEVFlatRateCharge Reason = "ev_flat_rate_charge"

	ReasonHeatPumpBoost   Reason = "heat_pump_boost"
	ReasonHeatPumpNormal  Reason = "heat_pump_normal"
	ReasonHeatPumpEconomy Reason = "heat_pump_economy"
)

// Text renders the operator-facing narrative for a reason against the
// tariff snapshot it was decided under.
func (r Reason) Text(info *types.TariffInfo) string {
	rate := 0.0
	currency := ""
	if info != nil {
		rate = info.CurrentRate
		currency = info.Currency
	}
	switch r {
	case ReasonOffPeakCharge:
		return fmt.Sprintf("Off-peak rate of %.3f %s/kWh: charging the battery now captures the cheapest energy of the day.", rate, currency)
	case ReasonOffPeakChargeIsraeli:
		return fmt.Sprintf("Off-peak rate of %.3f %s/kWh under the Israeli seasonal TAOZ schedule: overnight charging locks in the lowest seasonal rate before the morning shoulder begins.", rate, currency)
	case ReasonLowReserveCharge:
		return "Battery below the safety reserve: charging to a minimal reserve despite the current rate."
	case ReasonPeakDischarge:
		return fmt.Sprintf("Peak rate of %.3f %s/kWh: discharging the battery to offset expensive grid imports.", rate, currency)
	case ReasonEVOffPeakCharge:
		return "Off-peak period: charging the EV now at full power is optimal."
	case ReasonEVShoulderCharge:
		return "Shoulder period: charging the EV at reduced power to limit cost until off-peak begins."
	case ReasonEVPeakDelay:
		return "Peak period: delaying EV charging until the off-peak window opens."
	case ReasonEVFlatRateCharge:
		return "Flat-rate tariff: charging the EV now; timing makes no price difference."
	case ReasonHeatPumpBoost:
		return "Off-peak period: running the heat pump in boost mode and pre-heating while energy is cheap."
	case ReasonHeatPumpNormal:
		return "Running the heat pump in normal mode."
	case ReasonHeatPumpEconomy:
		return "Peak period: running the heat pump in economy mode to reduce peak-rate consumption."
	default:
		return string(r)
	}
}
