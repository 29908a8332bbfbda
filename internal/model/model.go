package model

import (
	"encoding/json"
	"strings"
)

// Item is one row of a managed resource list. Beyond the id and status every
// backend resource carries its own fields, so those stay opaque in Fields
// and are rendered/edited through the resource schema.
type Item struct {
	ID     string
	Status Status
	Fields map[string]string
}

// Name returns the item's display name, trying the common backend field
// names in order. Used for list rows and the duplicate-name guard.
func (it Item) Name() string {
	for _, k := range []string{"name", "title", "fullName", "email"} {
		if v := strings.TrimSpace(it.Fields[k]); v != "" {
			return v
		}
	}
	return it.ID
}

// Field returns a named field value ("" when absent).
func (it Item) Field(key string) string {
	return it.Fields[key]
}

// UnmarshalJSON accepts the backend's flat object shape: `id` and `status`
// are lifted out, every other scalar becomes a Fields entry. Non-scalar
// values (nested objects, arrays) keep their compact JSON so nothing is
// silently dropped.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	it.Fields = make(map[string]string, len(raw))
	for k, v := range raw {
		switch k {
		case "id", "_id":
			var s string
			if err := json.Unmarshal(v, &s); err == nil && it.ID == "" {
				it.ID = s
			}
		case "status":
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				it.Status = ParseStatus(s)
			}
		default:
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				it.Fields[k] = s
				continue
			}
			var n json.Number
			if err := json.Unmarshal(v, &n); err == nil {
				it.Fields[k] = n.String()
				continue
			}
			var bl bool
			if err := json.Unmarshal(v, &bl); err == nil {
				it.Fields[k] = strconvBool(bl)
				continue
			}
			it.Fields[k] = string(v)
		}
	}
	return nil
}

// MarshalJSON writes the flat object shape back out (CLI output keeps the
// backend's field naming).
func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Fields)+2)
	for k, v := range it.Fields {
		out[k] = v
	}
	out["id"] = it.ID
	if it.Status != "" {
		out["status"] = string(it.Status)
	}
	return json.Marshal(out)
}

func strconvBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
