// Package seed generates the demo historical works that populate the past
// partition on first launch. Generation is deterministic for a given
// catalog and reference time so repeated loads agree on ids.
package seed

import (
	"fmt"
	"time"

	"hvac-maintenance-backend/internal/model"
)

const (
	intervalMonths = 6
	totalIntervals = 6
	visitDuration  = 45 * time.Minute
)

// PastWorks returns one completed visit per device per half-year interval,
// spread pseudo-randomly across days and hours so the demo history looks
// lived-in.
func PastWorks(devices []model.Device, now time.Time) []model.MaintenanceWork {
	works := make([]model.MaintenanceWork, 0, len(devices)*totalIntervals)
	for deviceIndex, device := range devices {
		for i := 1; i <= totalIntervals; i++ {
			end := visitEnd(now, deviceIndex, i)
			start := end.Add(-visitDuration)
			endCopy := end

			works = append(works, model.MaintenanceWork{
				ID:               fmt.Sprintf("%s%s-%02d", model.DemoWorkPrefix, device.ID, i),
				DeviceID:         device.ID,
				DeviceModel:      device.Model,
				DeviceKind:       device.Kind,
				DeviceAddress:    device.Address,
				DeviceLocation:   device.Location,
				ExecutorID:       "u-tech",
				Status:           model.StatusCompleted,
				IsMalfunctioning: false,
				Notes:            "Rutin karbantartás.",
				Photos:           []model.MaintenancePhoto{},
				StartTime:        start,
				EndTime:          &endCopy,
			})
		}
	}
	return works
}

func visitEnd(now time.Time, deviceIndex, interval int) time.Time {
	// First day of the month intervalMonths*interval back, normalized.
	anchor := time.Date(now.Year(), now.Month()-time.Month(intervalMonths*interval), 1,
		0, 0, 0, 0, now.Location())
	daysInMonth := anchor.AddDate(0, 1, -1).Day()
	dayOffset := (deviceIndex*7 + interval*13) % daysInMonth
	day := dayOffset + 1
	if day < 1 {
		day = 1
	}
	hour := 9 + deviceIndex%6
	minute := (interval * 7) % 60
	return time.Date(anchor.Year(), anchor.Month(), day, hour, minute, 0, 0, now.Location())
}

// AttachDemoPhotos gives photo-less seed works one to three of the seeded
// demo photos, rotating through the set so neighbouring records differ.
// Works that already carry photos are left alone.
func AttachDemoPhotos(works []model.MaintenanceWork, photos []model.MaintenancePhoto) {
	if len(photos) == 0 {
		return
	}
	for i := range works {
		if len(works[i].Photos) > 0 {
			continue
		}
		primary := photos[i%len(photos)]
		secondary := photos[(i+3)%len(photos)]
		tertiary := photos[(i+5)%len(photos)]

		attached := []model.MaintenancePhoto{primary}
		if i%3 == 0 && secondary.ID != primary.ID {
			attached = append(attached, secondary)
		}
		if i%5 == 0 && tertiary.ID != primary.ID && tertiary.ID != secondary.ID {
			attached = append(attached, tertiary)
		}
		works[i].Photos = attached
	}
}
