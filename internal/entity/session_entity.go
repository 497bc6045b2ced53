package entity

import (
	"fmt"
	"time"
)

type SessionStatus string

const (
	StatusPendingVerification SessionStatus = "pending_verification"
	StatusEditing             SessionStatus = "editing"
	StatusAwaitingEdit        SessionStatus = "awaiting_edit"
)

// Field labels as printed on the documents. They double as wire identifiers
// in callback payloads and as keys in the persisted fields mapping.
const (
	FieldSection       = "Участок"
	FieldItem          = "Изделие"
	FieldDrawingNumber = "Номер чертежа"
	FieldItemNumber    = "Номер изделия"

	// ValueUnspecified marks a field the analysis could not resolve.
	ValueUnspecified = "не указано"
)

// Fields is the record under construction: exactly four recognized keys,
// never more, never fewer.
type Fields struct {
	Section       string `json:"Участок"`
	Item          string `json:"Изделие"`
	DrawingNumber string `json:"Номер чертежа"`
	ItemNumber    string `json:"Номер изделия"`
}

func NewFields() Fields {
	return Fields{
		Section:       ValueUnspecified,
		Item:          ValueUnspecified,
		DrawingNumber: ValueUnspecified,
		ItemNumber:    ValueUnspecified,
	}
}

// FieldLabels returns the labels in presentation order.
func FieldLabels() []string {
	return []string{FieldSection, FieldItem, FieldDrawingNumber, FieldItemNumber}
}

func (f Fields) Get(label string) (string, error) {
	switch label {
	case FieldSection:
		return f.Section, nil
	case FieldItem:
		return f.Item, nil
	case FieldDrawingNumber:
		return f.DrawingNumber, nil
	case FieldItemNumber:
		return f.ItemNumber, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrValidation, label)
}

func (f *Fields) Set(label, value string) error {
	switch label {
	case FieldSection:
		f.Section = value
	case FieldItem:
		f.Item = value
	case FieldDrawingNumber:
		f.DrawingNumber = value
	case FieldItemNumber:
		f.ItemNumber = value
	default:
		return fmt.Errorf("%w: unknown field %q", ErrValidation, label)
	}
	return nil
}

// Session tracks one document from extraction through verification.
type Session struct {
	Id               string        `json:"id"`
	ChatId           int64         `json:"chat_id"`
	RawExtractedText string        `json:"raw_extracted_text"`
	Fields           Fields        `json:"fields"`
	Status           SessionStatus `json:"status"`
	FieldBeingEdited string        `json:"field_being_edited,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// SessionUpdate is a partial mutation: only non-nil attributes change.
// FieldBeingEdited pointing at an empty string clears the marker.
type SessionUpdate struct {
	RawExtractedText *string
	Fields           *Fields
	Status           *SessionStatus
	FieldBeingEdited *string
}

// Apply merges the partial update and refreshes UpdatedAt.
func (s *Session) Apply(upd SessionUpdate) {
	if upd.RawExtractedText != nil {
		s.RawExtractedText = *upd.RawExtractedText
	}
	if upd.Fields != nil {
		s.Fields = *upd.Fields
	}
	if upd.Status != nil {
		s.Status = *upd.Status
	}
	if upd.FieldBeingEdited != nil {
		s.FieldBeingEdited = *upd.FieldBeingEdited
	}
	s.UpdatedAt = time.Now()
}

// Helpers for building SessionUpdate literals.
func StringPtr(s string) *string               { return &s }
func StatusPtr(s SessionStatus) *SessionStatus { return &s }
func FieldsPtr(f Fields) *Fields               { return &f }
