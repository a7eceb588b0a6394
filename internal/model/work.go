package model

import (
	"strings"
	"time"
)

// WorkStatus defines the lifecycle state of a maintenance work record.
type WorkStatus string

const (
	StatusInProgress WorkStatus = "in-progress"
	StatusCompleted  WorkStatus = "completed"
)

// DemoWorkPrefix marks seeded historical works. Records carrying this prefix
// are never written back to durable storage.
const DemoWorkPrefix = "MW-PAST-"

// DemoPhotoPrefix marks seeded demo photos in the blob store.
const DemoPhotoPrefix = "photo-demo-"

// MaintenancePhoto is one image attached to a work record. The image bytes
// (URL) live in the blob store; a work record only carries the reference.
type MaintenancePhoto struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// MaintenanceWork is one maintenance visit to one device. The device fields
// are a snapshot taken at visit start, not a live catalog reference, so
// historical records stay stable if the catalog changes later.
type MaintenanceWork struct {
	ID               string             `json:"id"`
	DeviceID         string             `json:"deviceId"`
	DeviceModel      string             `json:"deviceModel"`
	DeviceKind       string             `json:"deviceKind"`
	DeviceAddress    string             `json:"deviceAddress"`
	DeviceLocation   string             `json:"deviceLocation"`
	ExecutorID       string             `json:"executorId"`
	Status           WorkStatus         `json:"status"`
	IsMalfunctioning bool               `json:"isMalfunctioning"`
	Notes            string             `json:"notes"`
	Photos           []MaintenancePhoto `json:"photos"`
	StartTime        time.Time          `json:"startTime"`
	EndTime          *time.Time         `json:"endTime,omitempty"`
	LastEdited       *time.Time         `json:"lastEdited,omitempty"`
}

// IsDemoWork reports whether the id belongs to a seeded historical record.
func IsDemoWork(workID string) bool {
	return strings.HasPrefix(workID, DemoWorkPrefix)
}

// Clone returns a deep copy of the work record.
func (w MaintenanceWork) Clone() MaintenanceWork {
	out := w
	if w.Photos != nil {
		out.Photos = make([]MaintenancePhoto, len(w.Photos))
		copy(out.Photos, w.Photos)
	}
	if w.EndTime != nil {
		t := *w.EndTime
		out.EndTime = &t
	}
	if w.LastEdited != nil {
		t := *w.LastEdited
		out.LastEdited = &t
	}
	return out
}

// Device is one entry of the read-only device catalog.
type Device struct {
	ID       string `json:"id" yaml:"id"`
	Model    string `json:"model" yaml:"model"`
	Kind     string `json:"kind" yaml:"kind"`
	Address  string `json:"address" yaml:"address"`
	Location string `json:"location" yaml:"location"`
}
