package tariff

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// Period identifies a pricing period within a time-of-use schedule.
type Period string

const (
	PeriodPeak     Period = "peak"
	PeriodShoulder Period = "shoulder"
	PeriodOffPeak  Period = "offPeak"
)

// StandardRateLabel is the period label reported for flat-rate tariffs and
// for time-of-use tariffs whose schedule is missing.
const StandardRateLabel = "Standard Rate"

// SeasonForMonth returns the rate season for a month: June-September is
// summer, October-November autumn, March-May spring, the rest winter.
func SeasonForMonth(m time.Month) types.Season {
	switch {
	case m >= time.June && m <= time.September:
		return types.SeasonSummer
	case m == time.October || m == time.November:
		return types.SeasonAutumn
	case m >= time.March && m <= time.May:
		return types.SeasonSpring
	default:
		return types.SeasonWinter
	}
}

// PeriodForHour classifies a local hour of the day into a pricing period
// using the configured boundaries.
func PeriodForHour(cfg types.RuleConfig, hour int) Period {
	switch {
	case hour >= cfg.PeakStartHour && hour < cfg.PeakEndHour:
		return PeriodPeak
	case hour >= cfg.OffPeakStartHour || hour < cfg.OffPeakEndHour:
		return PeriodOffPeak
	default:
		return PeriodShoulder
	}
}

// IsPeakHour reports whether t falls within the peak window. Hour-only: it
// does not consult the seasonal schedule, so for seasonal tariffs the
// boundary it uses can diverge from the season-aware rate in Classify. The
// dispatch rules depend on that hour-only behavior; do not unify the two
// without checking the billed boundaries.
func IsPeakHour(cfg types.RuleConfig, t time.Time) bool {
	h := t.Hour()
	return h >= cfg.PeakStartHour && h < cfg.PeakEndHour
}

// IsOffPeakHour reports whether t falls within the off-peak window. Same
// hour-only caveat as IsPeakHour.
func IsOffPeakHour(cfg types.RuleConfig, t time.Time) bool {
	h := t.Hour()
	return h >= cfg.OffPeakStartHour || h < cfg.OffPeakEndHour
}

// Classify returns the import rate and period label for the tariff at now.
// Flat tariffs classify as the flat import rate. A time-of-use tariff with a
// missing schedule, or a schedule missing the current season, degrades to
// the flat rate instead of failing.
func Classify(t types.Tariff, cfg types.RuleConfig, now time.Time) (float64, string) {
	if !t.IsTimeOfUse || t.Schedule == nil {
		return t.ImportRate, StandardRateLabel
	}
	season := SeasonForMonth(now.Month())
	rates, ok := (*t.Schedule)[season]
	if !ok {
		return t.ImportRate, StandardRateLabel
	}
	period := PeriodForHour(cfg, now.Hour())
	return rateFor(rates, period), periodLabel(period, season)
}

// Info builds the point-in-time snapshot of a stored tariff.
func Info(t types.Tariff, cfg types.RuleConfig, now time.Time) types.TariffInfo {
	rate, period := Classify(t, cfg, now)
	return types.TariffInfo{
		Tariff:        t,
		CurrentRate:   rate,
		CurrentPeriod: period,
		IsIsraeli:     IsIsraeli(t),
	}
}

// IsIsraeli reports whether the tariff is an Israeli TAOZ-style tariff. The
// specialized dispatch narratives and the arbitrage profitability check only
// apply to these.
func IsIsraeli(t types.Tariff) bool {
	if strings.EqualFold(t.Currency, "ILS") {
		return true
	}
	provider := strings.ToLower(t.Provider)
	name := strings.ToLower(t.Name)
	return strings.Contains(provider, "israel") || strings.Contains(provider, "iec") ||
		strings.Contains(name, "israel") || strings.Contains(name, "taoz")
}

func rateFor(rates types.SeasonRates, p Period) float64 {
	switch p {
	case PeriodPeak:
		return rates.Peak
	case PeriodShoulder:
		return rates.Shoulder
	default:
		return rates.OffPeak
	}
}

func periodLabel(p Period, s types.Season) string {
	var name string
	switch p {
	case PeriodPeak:
		name = "Peak"
	case PeriodShoulder:
		name = "Shoulder"
	default:
		name = "Off-Peak"
	}
	return fmt.Sprintf("%s (%s)", name, s)
}
