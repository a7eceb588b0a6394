// Package catalog provides the read-only device catalog the session looks
// devices up in at visit start. The catalog is loaded once and injected; it
// is never mutated at runtime.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"hvac-maintenance-backend/internal/model"
)

// Catalog maps device ids to their descriptive metadata.
type Catalog struct {
	devices map[string]model.Device
}

// Load reads a catalog from a YAML file of device entries. An empty path
// returns the built-in demo catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Demo(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device catalog: %w", err)
	}
	var entries []model.Device
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse device catalog: %w", err)
	}
	return FromDevices(entries), nil
}

// FromDevices builds a catalog from a device list.
func FromDevices(entries []model.Device) *Catalog {
	devices := make(map[string]model.Device, len(entries))
	for _, d := range entries {
		devices[d.ID] = d
	}
	return &Catalog{devices: devices}
}

// Lookup returns the device metadata for id, or placeholder values when the
// id is unknown. It never fails: an unregistered device can still be
// serviced and recorded.
func (c *Catalog) Lookup(id string) model.Device {
	if d, ok := c.devices[id]; ok {
		return d
	}
	return model.Device{
		ID:       id,
		Model:    "Ismeretlen modell",
		Kind:     "UNKNOWN",
		Address:  "Ismeretlen cím",
		Location: "Ismeretlen helyszín",
	}
}

// Known reports whether id is a registered device.
func (c *Catalog) Known(id string) bool {
	_, ok := c.devices[id]
	return ok
}

// Devices returns all catalog entries sorted by id.
func (c *Catalog) Devices() []model.Device {
	out := make([]model.Device, 0, len(c.devices))
	for _, d := range c.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
