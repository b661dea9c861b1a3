package types

// DeviceType identifies the kind of device registered at a site. Dispatch
// rules switch on this; types without rules are skipped.
type DeviceType string

const (
	DeviceTypeBatteryStorage DeviceType = "battery_storage"
	DeviceTypeBattery        DeviceType = "battery"
	DeviceTypeEVCharger      DeviceType = "ev_charger"
	DeviceTypeHeatPump       DeviceType = "heat_pump"
	DeviceTypeSolarInverter  DeviceType = "solar_inverter"
	DeviceTypeGateway        DeviceType = "gateway"
)

// KnownDeviceTypes lists every device type the registry accepts.
var KnownDeviceTypes = []DeviceType{
	DeviceTypeBatteryStorage,
	DeviceTypeBattery,
	DeviceTypeEVCharger,
	DeviceTypeHeatPump,
	DeviceTypeSolarInverter,
	DeviceTypeGateway,
}

// DeviceReadings holds the latest telemetry snapshot reported for a device.
// All fields are optional; rules that need a missing reading skip the device.
type DeviceReadings struct {
	// SOC is the battery state of charge in percent (0-100).
	SOC *float64 `json:"soc,omitempty"`
	// PowerKW is the instantaneous power at the device, positive when
	// consuming from the grid.
	PowerKW *float64 `json:"powerKW,omitempty"`
}

// Device represents a device record as consumed by the advisor. The registry
// owning these records lives behind the storage interface.
type Device struct {
	ID       string         `json:"id"`
	Type     DeviceType     `json:"type"`
	Name     string         `json:"name"`
	Readings DeviceReadings `json:"readings"`
}

// IsKnownDeviceType reports whether t is one of the registered device types.
func IsKnownDeviceType(t DeviceType) bool {
	for _, k := range KnownDeviceTypes {
		if t == k {
			return true
		}
	}
	return false
}
