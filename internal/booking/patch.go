package booking

import (
	"encoding/json"
	"time"
)

// Field is a tri-state JSON value: absent (Set false), explicit null
// (Set true, Valid false), or set (Set true, Valid true).
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Valid = false
		var zero T
		f.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// Patch is a partial update of a booking. Absent fields are left untouched.
// Null policy per field:
//   - title: null clears the label to the empty string
//   - details: null clears the description to the empty string
//   - serviceType: null is rejected, the field is not clearable
//   - scheduledFor: null is rejected, the field is not clearable
type Patch struct {
	Title        Field[string]    `json:"title"`
	Details      Field[string]    `json:"details"`
	ServiceType  Field[string]    `json:"serviceType"`
	ScheduledFor Field[time.Time] `json:"scheduledFor"`
}

// Empty returns true if the patch touches no field.
func (p Patch) Empty() bool {
	return !p.Title.Set && !p.Details.Set && !p.ServiceType.Set && !p.ScheduledFor.Set
}
