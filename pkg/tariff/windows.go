package tariff

import (
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// Window is a clock-anchored time range.
type Window struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

// NextChargeWindow returns the off-peak window to charge in, relative to
// now. If now is already inside the off-peak window the window starts
// immediately; otherwise it starts at the next off-peak boundary.
func NextChargeWindow(cfg types.RuleConfig, now time.Time) Window {
	start := atHour(now, cfg.OffPeakStartHour)
	end := atHour(now, cfg.OffPeakEndHour)

	h := now.Hour()
	switch {
	case h >= cfg.OffPeakStartHour:
		// inside tonight's window, ends tomorrow morning
		return Window{Start: now, End: end.AddDate(0, 0, 1)}
	case h < cfg.OffPeakEndHour:
		// inside last night's window
		return Window{Start: now, End: end}
	default:
		return Window{Start: start, End: end.AddDate(0, 0, 1)}
	}
}

// NextDischargeWindow returns the peak window to discharge in, relative to
// now, rolling to tomorrow when today's peak has already passed.
func NextDischargeWindow(cfg types.RuleConfig, now time.Time) Window {
	start := atHour(now, cfg.PeakStartHour)
	end := atHour(now, cfg.PeakEndHour)

	h := now.Hour()
	switch {
	case h >= cfg.PeakStartHour && h < cfg.PeakEndHour:
		return Window{Start: now, End: end}
	case h < cfg.PeakStartHour:
		return Window{Start: start, End: end}
	default:
		return Window{Start: start.AddDate(0, 0, 1), End: end.AddDate(0, 0, 1)}
	}
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}
