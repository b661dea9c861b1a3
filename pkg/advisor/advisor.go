package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/log"
	"github.com/gridadvisor/gridadvisor/pkg/tariff"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// Commands issued to the external dispatch layer.
const (
	CommandBatteryCharge    = "battery_charge"
	CommandBatteryDischarge = "battery_discharge"
	CommandEVStartCharging  = "ev_start_charging"
	CommandEVDelayCharging  = "ev_delay_charging"
	CommandHeatPumpSetMode  = "heat_pump_set_mode"
)

// Dispatch priorities; lower runs first.
const (
	PriorityBattery  = 1
	PriorityEV       = 2
	PriorityHeatPump = 3
)

// NoTariffReasoning is the reasoning returned when a site has no usable
// tariff. Callers get an empty recommendation list, never an error.
const NoTariffReasoning = "No tariff information available for this site. Configure a tariff to receive dispatch recommendations."

// Advisor generates tariff-based dispatch recommendations for a site's
// device fleet. It holds no mutable state and is safe for concurrent use.
type Advisor struct {
	source tariff.Source
	cfg    types.RuleConfig
}

// New creates an Advisor over the given tariff source and rule constants.
func New(source tariff.Source, cfg types.RuleConfig) *Advisor {
	return &Advisor{source: source, cfg: cfg}
}

// Config returns the rule constants the advisor was built with.
func (a *Advisor) Config() types.RuleConfig {
	return a.cfg
}

// Generate produces the recommendation set for a site at now. batterySOC,
// when non-nil, overrides the state of charge reported by battery devices.
// The result is purely computed; persisting or executing it is the caller's
// responsibility. A site without a tariff gets an empty list and an
// explanatory reasoning string, not an error.
func (a *Advisor) Generate(ctx context.Context, siteID string, devices []types.Device, batterySOC *float64, now time.Time) types.RecommendationSet {
	set := types.RecommendationSet{
		SiteID:          siteID,
		GeneratedAt:     now,
		Recommendations: []types.Recommendation{},
	}

	info := a.source.TariffInfo(ctx, siteID, now)
	if info == nil {
		set.Reasoning = NoTariffReasoning
		return set
	}

	lines := []string{fmt.Sprintf(
		"Current tariff %q: %.3f %s/kWh (%s).",
		info.Name, info.CurrentRate, info.Currency, info.CurrentPeriod,
	)}

	for _, d := range devices {
		switch d.Type {
		case types.DeviceTypeBatteryStorage, types.DeviceTypeBattery:
			soc := batterySOC
			if soc == nil {
				soc = d.Readings.SOC
			}
			if soc == nil {
				log.Ctx(ctx).DebugContext(ctx, "battery has no state of charge reading, skipping",
					slog.String("deviceID", d.ID))
				continue
			}
			if adv := AdviseBatteryCharge(info, a.cfg, *soc, now); adv.Recommend {
				set.Recommendations = append(set.Recommendations, types.Recommendation{
					DeviceID:      d.ID,
					Command:       adv.Command,
					Params:        map[string]any{"targetSOC": adv.TargetSOC},
					Priority:      PriorityBattery,
					ScheduledTime: now,
				})
				lines = append(lines, adv.Reason.Text(info))
			}
			if adv := AdviseBatteryDischarge(info, a.cfg, *soc, now); adv.Recommend {
				set.Recommendations = append(set.Recommendations, types.Recommendation{
					DeviceID:      d.ID,
					Command:       adv.Command,
					Params:        map[string]any{"targetSOC": adv.TargetSOC},
					Priority:      PriorityBattery,
					ScheduledTime: now,
				})
				lines = append(lines, adv.Reason.Text(info))
			}

		case types.DeviceTypeEVCharger:
			adv := AdviseEVCharging(info, a.cfg, now)
			if adv.ShouldCharge {
				set.Recommendations = append(set.Recommendations, types.Recommendation{
					DeviceID:      d.ID,
					Command:       CommandEVStartCharging,
					Params:        map[string]any{"powerKW": adv.PowerKW},
					Priority:      PriorityEV,
					ScheduledTime: now,
				})
			} else {
				set.Recommendations = append(set.Recommendations, types.Recommendation{
					DeviceID:      d.ID,
					Command:       CommandEVDelayCharging,
					Params:        map[string]any{"recommendedStartTime": adv.RecommendedStart.Format(time.RFC3339)},
					Priority:      PriorityEV,
					ScheduledTime: adv.RecommendedStart,
				})
			}
			lines = append(lines, adv.Reason.Text(info))

		case types.DeviceTypeHeatPump:
			adv := AdviseHeatPump(info, a.cfg, now)
			set.Recommendations = append(set.Recommendations, types.Recommendation{
				DeviceID: d.ID,
				Command:  CommandHeatPumpSetMode,
				Params: map[string]any{
					"mode":      string(adv.Mode),
					"shouldRun": adv.ShouldRun,
					"preheat":   adv.PreheatRecommended,
				},
				Priority:      PriorityHeatPump,
				ScheduledTime: now,
			})
			lines = append(lines, adv.Reason.Text(info))

		case types.DeviceTypeSolarInverter, types.DeviceTypeGateway:
			// no dispatch rules for these

		default:
			log.Ctx(ctx).DebugContext(ctx, "no dispatch rules for device type, skipping",
				slog.String("deviceID", d.ID), slog.String("type", string(d.Type)))
		}
	}

	if info.IsTimeOfUse && info.CurrentRate < info.ImportRate {
		set.PredictedSavings = (info.ImportRate - info.CurrentRate) * a.cfg.AssumedDailyConsumptionKWH
		lines = append(lines, fmt.Sprintf(
			"Estimated %.2f %s of savings today versus the standard import rate.",
			set.PredictedSavings, info.Currency,
		))
	}
	set.ConfidenceScore = a.cfg.ConfidenceScore
	set.Reasoning = strings.Join(lines, " ")
	return set
}
