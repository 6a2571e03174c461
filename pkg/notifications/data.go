package notifications

import (
	"fmt"
	"maps"
)

// Payload keys with special meaning to the service.
const (
	DataKeyUserRole  = "userRole"
	DataKeyUserRoles = "userRoles"
)

// Data is the event payload a notification is rendered from.
// A snapshot of it is stored with the notification.
type Data map[string]any

// String returns the value under key as a string, or "" when absent.
func (d Data) String(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// StringOr is String with a fallback for empty values.
func (d Data) StringOr(key, fallback string) string {
	if s := d.String(key); s != "" {
		return s
	}
	return fallback
}

// Role returns the recipient role carried in the payload, or fallback.
func (d Data) Role(fallback Role) Role {
	if r := toRole(d[DataKeyUserRole]); r != "" {
		return r
	}
	return fallback
}

// Roles returns the per-user role map used by bulk creation.
// It accepts map[string]Role, map[string]string and decoded JSON objects.
func (d Data) Roles() map[string]Role {
	out := make(map[string]Role)
	switch m := d[DataKeyUserRoles].(type) {
	case map[string]Role:
		maps.Copy(out, m)
	case map[string]string:
		for id, r := range m {
			out[id] = Role(r)
		}
	case map[string]any:
		for id, r := range m {
			if role := toRole(r); role != "" {
				out[id] = role
			}
		}
	case Data:
		for id, r := range m {
			if role := toRole(r); role != "" {
				out[id] = role
			}
		}
	}
	return out
}

// Clone returns a shallow copy.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// forRecipient is the snapshot stored for one recipient: the role map of a
// bulk send is replaced by that recipient's own role.
func (d Data) forRecipient(role Role) Data {
	out := make(Data, len(d)+1)
	for k, v := range d {
		if k == DataKeyUserRoles {
			continue
		}
		out[k] = v
	}
	out[DataKeyUserRole] = string(role)
	return out
}

func toRole(v any) Role {
	switch r := v.(type) {
	case Role:
		return r
	case string:
		return Role(r)
	default:
		return ""
	}
}
