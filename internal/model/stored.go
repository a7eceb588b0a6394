package model

import "time"

// CurrentSchemaVersion is the schema of payloads written by this build.
// Version 0 (the field absent) is the legacy shape where photo references
// could still carry an inline url.
const CurrentSchemaVersion = 1

// StoredPhotoRef is the persisted form of a photo reference. The url is
// deliberately dropped on serialization: the bytes are recoverable from the
// blob store by id. Legacy (v0) payloads may still carry one.
type StoredPhotoRef struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	URL         string `json:"url,omitempty"` // legacy v0 only, never written
}

// StoredWork is the persisted form of a MaintenanceWork with RFC3339 times.
type StoredWork struct {
	ID               string           `json:"id"`
	DeviceID         string           `json:"deviceId"`
	DeviceModel      string           `json:"deviceModel"`
	DeviceKind       string           `json:"deviceKind"`
	DeviceAddress    string           `json:"deviceAddress"`
	DeviceLocation   string           `json:"deviceLocation"`
	ExecutorID       string           `json:"executorId"`
	Status           WorkStatus       `json:"status"`
	IsMalfunctioning bool             `json:"isMalfunctioning"`
	Notes            string           `json:"notes"`
	Photos           []StoredPhotoRef `json:"photos"`
	StartTime        string           `json:"startTime"`
	EndTime          string           `json:"endTime,omitempty"`
	LastEdited       string           `json:"lastEdited,omitempty"`
}

// StoredState is the single durable ledger payload.
type StoredState struct {
	SchemaVersion int          `json:"schemaVersion,omitempty"`
	Current       *StoredWork  `json:"current"`
	Today         []StoredWork `json:"today"`
	Past          []StoredWork `json:"past"`
	ShiftClosed   bool         `json:"shiftClosed"`
}

// SerializeWork converts a work record to its stored form.
func SerializeWork(w MaintenanceWork) StoredWork {
	photos := make([]StoredPhotoRef, 0, len(w.Photos))
	for _, p := range w.Photos {
		photos = append(photos, StoredPhotoRef{
			ID:          p.ID,
			Description: p.Description,
			Timestamp:   p.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	out := StoredWork{
		ID:               w.ID,
		DeviceID:         w.DeviceID,
		DeviceModel:      w.DeviceModel,
		DeviceKind:       w.DeviceKind,
		DeviceAddress:    w.DeviceAddress,
		DeviceLocation:   w.DeviceLocation,
		ExecutorID:       w.ExecutorID,
		Status:           w.Status,
		IsMalfunctioning: w.IsMalfunctioning,
		Notes:            w.Notes,
		Photos:           photos,
		StartTime:        w.StartTime.UTC().Format(time.RFC3339Nano),
	}
	if w.EndTime != nil {
		out.EndTime = w.EndTime.UTC().Format(time.RFC3339Nano)
	}
	if w.LastEdited != nil {
		out.LastEdited = w.LastEdited.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// DeserializeWork converts a stored work back into the in-memory form.
// Photo urls come back empty (pending blob-store hydration) unless the
// payload is a legacy v0 record that embedded them inline. Unparseable
// timestamps decode to the zero time rather than failing the whole load.
func DeserializeWork(s StoredWork) MaintenanceWork {
	photos := make([]MaintenancePhoto, 0, len(s.Photos))
	for _, p := range s.Photos {
		photos = append(photos, MaintenancePhoto{
			ID:          p.ID,
			URL:         p.URL,
			Description: p.Description,
			Timestamp:   parseStoredTime(p.Timestamp),
		})
	}
	out := MaintenanceWork{
		ID:               s.ID,
		DeviceID:         s.DeviceID,
		DeviceModel:      s.DeviceModel,
		DeviceKind:       s.DeviceKind,
		DeviceAddress:    s.DeviceAddress,
		DeviceLocation:   s.DeviceLocation,
		ExecutorID:       s.ExecutorID,
		Status:           s.Status,
		IsMalfunctioning: s.IsMalfunctioning,
		Notes:            s.Notes,
		Photos:           photos,
		StartTime:        parseStoredTime(s.StartTime),
	}
	if s.EndTime != "" {
		t := parseStoredTime(s.EndTime)
		out.EndTime = &t
	}
	if s.LastEdited != "" {
		t := parseStoredTime(s.LastEdited)
		out.LastEdited = &t
	}
	return out
}

func parseStoredTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
