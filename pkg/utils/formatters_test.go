package utils

import (
	"strings"
	"testing"

	"doc-verify-bot/internal/entity"
)

func TestParseExtractedFields(t *testing.T) {
	tests := []struct {
		name string
		text string
		want entity.Fields
	}{
		{
			name: "full document header",
			text: "Участок: Цех 3\nИзделие: Корпус\nНомер чертежа: ТМГ.1000.2234\nНомер изделия: 55",
			want: entity.Fields{
				Section:       "Цех 3",
				Item:          "Корпус",
				DrawingNumber: "ТМГ.1000.2234",
				ItemNumber:    "55",
			},
		},
		{
			name: "missing fields keep sentinel",
			text: "Номер чертежа: ТМГ 2X2K2.250.01.00.00",
			want: entity.Fields{
				Section:       entity.ValueUnspecified,
				Item:          entity.ValueUnspecified,
				DrawingNumber: "ТМГ 2X2K2.250.01.00.00",
				ItemNumber:    entity.ValueUnspecified,
			},
		},
		{
			name: "unmatched labels ignored",
			text: "Дата: 2024-01-01\nУчасток: Цех 1\nПодпись: Иванов",
			want: entity.Fields{
				Section:       "Цех 1",
				Item:          entity.ValueUnspecified,
				DrawingNumber: entity.ValueUnspecified,
				ItemNumber:    entity.ValueUnspecified,
			},
		},
		{
			name: "surrounding whitespace trimmed",
			text: "  Изделие:   Корпус редуктора  \n",
			want: entity.Fields{
				Section:       entity.ValueUnspecified,
				Item:          "Корпус редуктора",
				DrawingNumber: entity.ValueUnspecified,
				ItemNumber:    entity.ValueUnspecified,
			},
		},
		{
			name: "empty input",
			text: "",
			want: entity.NewFields(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseExtractedFields(tt.text)
			if got != tt.want {
				t.Errorf("ParseExtractedFields() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatForDisplay(t *testing.T) {
	f := entity.Fields{
		Section:       "Цех 3",
		Item:          "Корпус",
		DrawingNumber: "ТМГ.1000.2234",
		ItemNumber:    "55",
	}

	out := FormatForDisplay(f)
	for _, want := range []string{"Распознанные данные", "Участок: <b>Цех 3</b>", "Номер изделия: <b>55</b>"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatForDisplay() missing %q in %q", want, out)
		}
	}
}

func TestFormatFinalOrder(t *testing.T) {
	out := FormatFinal(entity.NewFields())
	idxSection := strings.Index(out, "Участок")
	idxItemNumber := strings.Index(out, "Номер изделия")
	if idxSection < 0 || idxItemNumber < 0 || idxSection > idxItemNumber {
		t.Errorf("FormatFinal() field order wrong: %q", out)
	}
}
