package types

// Season identifies one of the four rate seasons in a time-of-use schedule.
type Season string

const (
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonSpring Season = "spring"
	SeasonWinter Season = "winter"
)

// SeasonRates holds the per-kWh import rates for each pricing period within
// a season.
type SeasonRates struct {
	Peak     float64 `json:"peak"`
	Shoulder float64 `json:"shoulder"`
	OffPeak  float64 `json:"offPeak"`
}

// TariffSchedule maps a season to its pricing periods. Tariffs that price
// every season the same still carry all four entries.
type TariffSchedule map[Season]SeasonRates

// Tariff represents the tariff record stored for a site.
type Tariff struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Provider    string          `json:"provider"`
	ImportRate  float64         `json:"importRate"`
	ExportRate  float64         `json:"exportRate"`
	IsTimeOfUse bool            `json:"isTimeOfUse"`
	Schedule    *TariffSchedule `json:"scheduleData,omitempty"`
	Currency    string          `json:"currency"`
}

// TariffInfo is a read-only snapshot of a stored tariff combined with the
// rate and period computed for a specific point in time. It is rebuilt on
// every request and never cached, so CurrentRate and CurrentPeriod always
// reflect the clock the caller passed in.
type TariffInfo struct {
	Tariff
	CurrentRate   float64 `json:"currentRate"`
	CurrentPeriod string  `json:"currentPeriod"`
	IsIsraeli     bool    `json:"isIsraeliTariff"`
}
