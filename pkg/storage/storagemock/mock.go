package storagemock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gridadvisor/gridadvisor/pkg/storage"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetSite(ctx context.Context, siteID string) (types.Site, error) {
	args := m.Called(ctx, siteID)
	if len(args) > 0 {
		return args.Get(0).(types.Site), args.Error(1)
	}
	return types.Site{}, nil
}

func (m *MockDatabase) ListSites(ctx context.Context) ([]types.Site, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		return args.Get(0).([]types.Site), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) CreateSite(ctx context.Context, siteID string, site types.Site) error {
	args := m.Called(ctx, siteID, site)
	return args.Error(0)
}

func (m *MockDatabase) GetTariff(ctx context.Context, siteID string) (types.Tariff, error) {
	args := m.Called(ctx, siteID)
	if len(args) > 0 {
		return args.Get(0).(types.Tariff), args.Error(1)
	}
	return types.Tariff{}, nil
}

func (m *MockDatabase) SetTariff(ctx context.Context, siteID string, tariff types.Tariff) error {
	args := m.Called(ctx, siteID, tariff)
	return args.Error(0)
}

func (m *MockDatabase) ListDevices(ctx context.Context, siteID string) ([]types.Device, error) {
	args := m.Called(ctx, siteID)
	if len(args) > 0 {
		return args.Get(0).([]types.Device), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) UpsertDevice(ctx context.Context, siteID string, device types.Device) error {
	args := m.Called(ctx, siteID, device)
	return args.Error(0)
}

func (m *MockDatabase) InsertRecommendations(ctx context.Context, siteID string, set types.RecommendationSet) error {
	args := m.Called(ctx, siteID, set)
	return args.Error(0)
}

func (m *MockDatabase) GetRecommendationHistory(ctx context.Context, siteID string, start, end time.Time) ([]types.RecommendationSet, error) {
	args := m.Called(ctx, siteID, start, end)
	if len(args) > 0 {
		return args.Get(0).([]types.RecommendationSet), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
