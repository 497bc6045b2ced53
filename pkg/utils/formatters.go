package utils

import (
	"fmt"
	"strings"

	"doc-verify-bot/internal/entity"
)

// ParseExtractedFields normalizes the line-oriented "Label: value" output of
// the analysis step into the four-field mapping. Unmatched labels are
// ignored; fields absent from the text keep their sentinel value.
func ParseExtractedFields(text string) entity.Fields {
	fields := entity.NewFields()

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, label := range entity.FieldLabels() {
			prefix := label + ":"
			if strings.HasPrefix(line, prefix) {
				value := strings.TrimSpace(strings.TrimPrefix(line, prefix))
				if value != "" {
					// Set cannot fail here, label comes from FieldLabels.
					_ = fields.Set(label, value)
				}
				break
			}
		}
	}

	return fields
}

func fieldLines(f entity.Fields) string {
	var b strings.Builder
	for i, label := range entity.FieldLabels() {
		value, _ := f.Get(label)
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: <b>%s</b>", label, value)
	}
	return b.String()
}

// FormatForDisplay renders the freshly extracted fields for verification.
func FormatForDisplay(f entity.Fields) string {
	return "<b>Распознанные данные:</b>\n\n" + fieldLines(f)
}

// FormatForEdit renders the fields above the per-field edit menu.
func FormatForEdit(f entity.Fields) string {
	return "<b>Текущие данные:</b>\n\n" + fieldLines(f) +
		"\n\n<i>Нажмите на поле которое хотите исправить:</i>"
}

// FormatFinal renders the confirmed record for the result message.
func FormatFinal(f entity.Fields) string {
	return fieldLines(f)
}
