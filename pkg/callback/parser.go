// Package callback encodes and decodes inline-button payloads.
//
// The wire contract is a single opaque string: "<action>_<session-id>" or
// "edit_field_<session-id>_<field-label>". Field labels may themselves
// contain the delimiter, so decoding splits on the fixed prefix and the
// session id only and keeps the remainder verbatim.
package callback

import (
	"fmt"
	"strings"
)

type Action string

const (
	ActionVerifyOK   Action = "verify_ok"
	ActionVerifyEdit Action = "verify_edit"
	ActionEditField  Action = "edit_field"
	ActionEditDone   Action = "edit_done"
	ActionEditOK     Action = "edit_ok"
)

// Callback is one decoded button press.
type Callback struct {
	Action    Action
	SessionID string
	Field     string // set only for ActionEditField
}

// Encode builds the payload for actions that carry no field.
func Encode(action Action, sessionID string) string {
	return string(action) + "_" + sessionID
}

// EncodeField builds the payload for a field-select button.
func EncodeField(sessionID, field string) string {
	return string(ActionEditField) + "_" + sessionID + "_" + field
}

// Decode parses a raw payload. Session ids are UUIDs and never contain the
// delimiter, so everything after the id belongs to the field label.
func Decode(data string) (*Callback, error) {
	for _, action := range []Action{ActionVerifyOK, ActionVerifyEdit, ActionEditField, ActionEditDone, ActionEditOK} {
		prefix := string(action) + "_"
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		rest := data[len(prefix):]
		cb := &Callback{Action: action, SessionID: rest}
		if action == ActionEditField {
			parts := strings.SplitN(rest, "_", 2)
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return nil, fmt.Errorf("callback %q: missing field label", data)
			}
			cb.SessionID = parts[0]
			cb.Field = parts[1]
		}
		if cb.SessionID == "" {
			return nil, fmt.Errorf("callback %q: missing session id", data)
		}
		return cb, nil
	}
	return nil, fmt.Errorf("callback %q: unrecognized action", data)
}
