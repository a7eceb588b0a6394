package catalog

import "hvac-maintenance-backend/internal/model"

// Demo returns the built-in demo catalog used when no catalog file is
// configured.
func Demo() *Catalog {
	return FromDevices(demoDevices)
}

var demoDevices = []model.Device{
	{ID: "DEMO-DEVICE-001", Model: "Daikin FXFQ-A", Kind: "FAN_COIL_UNIT", Address: "Budapest, Váci út 1", Location: "2. emelet, 201. szoba"},
	{ID: "DEMO-DEVICE-002", Model: "Mitsubishi MSZ-AP", Kind: "INDOOR_UNIT", Address: "Budapest, Váci út 1", Location: "3. emelet, 305. szoba"},
	{ID: "DEMO-DEVICE-003", Model: "Carrier 38QUS", Kind: "CONDENSER", Address: "Budapest, Váci út 1", Location: "Tető, R1 zóna"},
	{ID: "DEMO-DEVICE-004", Model: "Systemair K-EC", Kind: "FAN", Address: "Budapest, Váci út 1", Location: "1. emelet, 105. gépészet"},
	{ID: "DEMO-DEVICE-005", Model: "Swegon GOLD RX", Kind: "AIR_HANDLER_UNIT", Address: "Budapest, Váci út 1", Location: "Pinceszint, B-12"},
	{ID: "DEMO-DEVICE-006", Model: "Daikin VRV IV", Kind: "VRF_OUTDOOR_UNIT", Address: "Budapest, Váci út 1", Location: "Tető, R2 zóna"},
	{ID: "DEMO-DEVICE-007", Model: "Trane Sintesis", Kind: "CHILLER", Address: "Budapest, Váci út 1", Location: "Pinceszint, B-21"},
	{ID: "DEMO-DEVICE-008", Model: "Daikin FXFQ-A", Kind: "FAN_COIL_UNIT", Address: "Budapest, Fehérvári út 12", Location: "2. emelet, 215. tárgyaló"},
	{ID: "DEMO-DEVICE-009", Model: "Mitsubishi MSZ-AP", Kind: "INDOOR_UNIT", Address: "Budapest, Fehérvári út 12", Location: "4. emelet, 410. iroda"},
	{ID: "DEMO-DEVICE-010", Model: "Carrier 38QUS", Kind: "CONDENSER", Address: "Budapest, Fehérvári út 12", Location: "Tető, R1 zóna"},
	{ID: "DEMO-DEVICE-011", Model: "Systemair K-EC", Kind: "FAN", Address: "Budapest, Fehérvári út 12", Location: "1. emelet, 112. folyosó"},
	{ID: "DEMO-DEVICE-012", Model: "Swegon GOLD RX", Kind: "AIR_HANDLER_UNIT", Address: "Budapest, Fehérvári út 12", Location: "Pinceszint, B-07"},
	{ID: "DEMO-DEVICE-013", Model: "Daikin VRV IV", Kind: "VRF_OUTDOOR_UNIT", Address: "Budapest, Fehérvári út 12", Location: "Tető, R2 zóna"},
	{ID: "DEMO-DEVICE-014", Model: "Trane Sintesis", Kind: "CHILLER", Address: "Budapest, Fehérvári út 12", Location: "Pinceszint, B-19"},
	{ID: "DEMO-DEVICE-015", Model: "Daikin FXFQ-A", Kind: "FAN_COIL_UNIT", Address: "Szentendre, Ipari út 5", Location: "1. emelet, A-03 csarnok"},
	{ID: "DEMO-DEVICE-016", Model: "Mitsubishi MSZ-AP", Kind: "INDOOR_UNIT", Address: "Szentendre, Ipari út 5", Location: "1. emelet, A-08 raktár"},
	{ID: "DEMO-DEVICE-017", Model: "Carrier 38QUS", Kind: "CONDENSER", Address: "Szentendre, Ipari út 5", Location: "Tető, R1 zóna"},
	{ID: "DEMO-DEVICE-018", Model: "Systemair K-EC", Kind: "FAN", Address: "Szentendre, Ipari út 5", Location: "2. emelet, B-12 karbantartás"},
	{ID: "DEMO-DEVICE-019", Model: "Swegon GOLD RX", Kind: "AIR_HANDLER_UNIT", Address: "Szentendre, Ipari út 5", Location: "Pinceszint, B-01"},
	{ID: "DEMO-DEVICE-020", Model: "Daikin VRV IV", Kind: "VRF_OUTDOOR_UNIT", Address: "Szentendre, Ipari út 5", Location: "Tető, R2 zóna"},
}
