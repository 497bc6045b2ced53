package telegram

import (
	"doc-verify-bot/internal/entity"
	"doc-verify-bot/pkg/callback"
)

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// VerificationKeyboard offers the confirm/edit choice under freshly
// extracted fields.
func VerificationKeyboard(sessionID string) InlineKeyboardMarkup {
	return InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "✏️ Скорректировать", CallbackData: callback.Encode(callback.ActionVerifyEdit, sessionID)},
				{Text: "✅ Всё верно", CallbackData: callback.Encode(callback.ActionVerifyOK, sessionID)},
			},
		},
	}
}

// EditKeyboard offers one button per field plus a done button.
func EditKeyboard(sessionID string) InlineKeyboardMarkup {
	return InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "🏭 Участок", CallbackData: callback.EncodeField(sessionID, entity.FieldSection)},
				{Text: "🔧 Изделие", CallbackData: callback.EncodeField(sessionID, entity.FieldItem)},
			},
			{
				{Text: "📐 Номер чертежа", CallbackData: callback.EncodeField(sessionID, entity.FieldDrawingNumber)},
				{Text: "🔢 Номер изделия", CallbackData: callback.EncodeField(sessionID, entity.FieldItemNumber)},
			},
			{
				{Text: "✅ Завершить", CallbackData: callback.Encode(callback.ActionEditDone, sessionID)},
			},
		},
	}
}

// FinalConfirmKeyboard carries the single confirm button under the summary.
func FinalConfirmKeyboard(sessionID string) InlineKeyboardMarkup {
	return InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "✅ ОК", CallbackData: callback.Encode(callback.ActionEditOK, sessionID)},
			},
		},
	}
}
