package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/gridadvisor/gridadvisor/pkg/types"
)

var (
	ErrSiteNotFound   = errors.New("site not found")
	ErrTariffNotFound = errors.New("tariff not found")
	ErrDeviceNotFound = errors.New("device not found")
)

// Database defines the interface for the tariff, device, and recommendation
// stores.
type Database interface {
	// Sites
	GetSite(ctx context.Context, siteID string) (types.Site, error)
	ListSites(ctx context.Context) ([]types.Site, error)
	CreateSite(ctx context.Context, siteID string, site types.Site) error

	// Tariffs
	// GetTariff returns ErrTariffNotFound when the site has no tariff
	// configured.
	GetTariff(ctx context.Context, siteID string) (types.Tariff, error)
	SetTariff(ctx context.Context, siteID string, tariff types.Tariff) error

	// Devices
	ListDevices(ctx context.Context, siteID string) ([]types.Device, error)
	UpsertDevice(ctx context.Context, siteID string, device types.Device) error

	// Recommendation history
	// InsertRecommendations records an advisor result; one record per
	// generation time.
	InsertRecommendations(ctx context.Context, siteID string, set types.RecommendationSet) error
	GetRecommendationHistory(ctx context.Context, siteID string, start, end time.Time) ([]types.RecommendationSet, error)

	// Lifecycle
	Close() error
}

// Configured sets up the storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore, sqlite)")

	var p struct{ Database }

	fs := configuredFirestore()
	sq := configuredSQLite()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		case "sqlite":
			if err := sq.Validate(); err != nil {
				panic(fmt.Sprintf("sqlite validation failed: %v", err))
			}
			p.Database = sq
			if err := sq.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("sqlite init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
