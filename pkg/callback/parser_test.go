package callback

import (
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantAction  Action
		wantSession string
		wantField   string
		wantErr     bool
	}{
		{
			name:        "confirm",
			data:        "verify_ok_11111111-2222-3333-4444-555555555555",
			wantAction:  ActionVerifyOK,
			wantSession: "11111111-2222-3333-4444-555555555555",
		},
		{
			name:        "edit menu",
			data:        "verify_edit_abc",
			wantAction:  ActionVerifyEdit,
			wantSession: "abc",
		},
		{
			name:        "field select cyrillic label",
			data:        "edit_field_abc_Номер чертежа",
			wantAction:  ActionEditField,
			wantSession: "abc",
			wantField:   "Номер чертежа",
		},
		{
			name:        "field label containing delimiter",
			data:        "edit_field_abc_some_field_name",
			wantAction:  ActionEditField,
			wantSession: "abc",
			wantField:   "some_field_name",
		},
		{
			name:        "done",
			data:        "edit_done_abc",
			wantAction:  ActionEditDone,
			wantSession: "abc",
		},
		{
			name:        "final confirm",
			data:        "edit_ok_abc",
			wantAction:  ActionEditOK,
			wantSession: "abc",
		},
		{
			name:    "unknown action",
			data:    "something_else_abc",
			wantErr: true,
		},
		{
			name:    "field select without label",
			data:    "edit_field_abc",
			wantErr: true,
		},
		{
			name:    "empty session id",
			data:    "verify_ok_",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := Decode(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode(%q) expected error, got %+v", tt.data, cb)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", tt.data, err)
			}
			if cb.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", cb.Action, tt.wantAction)
			}
			if cb.SessionID != tt.wantSession {
				t.Errorf("SessionID = %q, want %q", cb.SessionID, tt.wantSession)
			}
			if cb.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cb.Field, tt.wantField)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sessionID := "11111111-2222-3333-4444-555555555555"

	for _, field := range []string{"Участок", "Изделие", "Номер чертежа", "Номер изделия", "field_with_underscores"} {
		data := EncodeField(sessionID, field)
		cb, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", data, err)
		}
		if cb.SessionID != sessionID {
			t.Errorf("SessionID = %q, want %q", cb.SessionID, sessionID)
		}
		if cb.Field != field {
			t.Errorf("Field = %q, want %q", cb.Field, field)
		}
	}

	for _, action := range []Action{ActionVerifyOK, ActionVerifyEdit, ActionEditDone, ActionEditOK} {
		cb, err := Decode(Encode(action, sessionID))
		if err != nil {
			t.Fatalf("Decode(Encode(%q)) error: %v", action, err)
		}
		if cb.Action != action || cb.SessionID != sessionID {
			t.Errorf("round trip %q: got %+v", action, cb)
		}
	}
}
