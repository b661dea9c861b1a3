package main

import (
	"context"
	"fmt"
	"os"

	"github.com/levenlabs/go-lflag"

	"github.com/gridadvisor/gridadvisor/pkg/log"
	"github.com/gridadvisor/gridadvisor/pkg/storage"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

func floatPtr(f float64) *float64 { return &f }

func main() {
	s := storage.Configured()
	lflag.Configure()

	ctx := context.Background()

	log.Ctx(ctx).InfoContext(ctx, "seeding demo site")

	const siteID = "demo"

	site := types.Site{
		ID:       siteID,
		Name:     "Demo Home",
		Timezone: "Asia/Jerusalem",
	}
	if err := s.CreateSite(ctx, siteID, site); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed site", "error", err)
		os.Exit(1)
	}

	// IEC TAOZ-style seasonal time-of-use schedule
	schedule := types.TariffSchedule{
		types.SeasonSummer: {Peak: 0.53, Shoulder: 0.45, OffPeak: 0.25},
		types.SeasonAutumn: {Peak: 0.44, Shoulder: 0.40, OffPeak: 0.24},
		types.SeasonSpring: {Peak: 0.44, Shoulder: 0.40, OffPeak: 0.24},
		types.SeasonWinter: {Peak: 0.51, Shoulder: 0.43, OffPeak: 0.26},
	}
	tariff := types.Tariff{
		ID:          "iec-taoz",
		Name:        "IEC TAOZ Residential",
		Provider:    "Israel Electric Corporation",
		ImportRate:  0.48,
		ExportRate:  0.23,
		IsTimeOfUse: true,
		Schedule:    &schedule,
		Currency:    "ILS",
	}
	if err := s.SetTariff(ctx, siteID, tariff); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed tariff", "error", err)
		os.Exit(1)
	}

	devices := []types.Device{
		{ID: "bat-1", Type: types.DeviceTypeBatteryStorage, Name: "Garage Battery", Readings: types.DeviceReadings{SOC: floatPtr(42)}},
		{ID: "ev-1", Type: types.DeviceTypeEVCharger, Name: "Driveway Charger"},
		{ID: "hp-1", Type: types.DeviceTypeHeatPump, Name: "Heat Pump"},
		{ID: "inv-1", Type: types.DeviceTypeSolarInverter, Name: "Roof Inverter"},
		{ID: "gw-1", Type: types.DeviceTypeGateway, Name: "Site Gateway"},
	}
	for _, d := range devices {
		if err := s.UpsertDevice(ctx, siteID, d); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to seed device", "error", err, "deviceID", d.ID)
			os.Exit(1)
		}
		fmt.Printf("Seeded device %s (%s)\n", d.ID, d.Type)
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded demo site successfully")
}
