package types

import "time"

// Recommendation is a single timestamped device command emitted by the
// advisor. Execution is the dispatch layer's responsibility; the advisor
// only computes and records these.
type Recommendation struct {
	DeviceID string         `json:"deviceId"`
	Command  string         `json:"command"`
	Params   map[string]any `json:"params,omitempty"`
	// Priority orders recommendations for the dispatch layer; lower runs
	// first.
	Priority      int       `json:"priority"`
	ScheduledTime time.Time `json:"scheduledTime"`
}

// RecommendationSet is the advisor's aggregate result for one site at one
// point in time.
type RecommendationSet struct {
	SiteID          string           `json:"siteID"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Recommendations []Recommendation `json:"recommendations"`
	// PredictedSavings is a coarse daily estimate versus the standard
	// import rate, in the tariff's currency. Zero when the current rate is
	// not below the standard rate.
	PredictedSavings float64 `json:"predictedSavings"`
	ConfidenceScore  float64 `json:"confidenceScore"`
	// Reasoning is the operator-facing narrative for the whole set.
	Reasoning string `json:"reasoning"`
}
