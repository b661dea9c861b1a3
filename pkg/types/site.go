package types

// SiteIDNone is the site ID used in single-site mode, where the server
// doesn't require callers to identify a site.
const SiteIDNone = "NONE"

// Site represents a managed site (a home or facility with devices behind a
// meter).
type Site struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PartnerID string `json:"partnerID,omitempty"`
	// Timezone is the IANA zone the site's tariff clock runs in.
	Timezone string `json:"timezone,omitempty"`
}
