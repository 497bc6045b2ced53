package service

import (
	"context"
	"errors"
	"fmt"

	"doc-verify-bot/internal/dto"
	"doc-verify-bot/internal/entity"
	"doc-verify-bot/internal/pkg/logger"
	"doc-verify-bot/internal/repository/contract"
	"doc-verify-bot/pkg/callback"
	"doc-verify-bot/pkg/telegram"
	"doc-verify-bot/pkg/utils"
)

const msgSessionNotFound = "❌ Сессия не найдена"

type IVerificationService interface {
	HandleCallback(ctx context.Context, query *dto.CallbackQuery) error
	HandleText(ctx context.Context, chatID int64, text string) error
}

type verificationService struct {
	sessionRepo contract.SessionRepository
	crm         CRMSubmitter
	chat        ChatGateway
	logger      logger.ILogger
}

func NewVerificationService(
	sessionRepo contract.SessionRepository,
	crm CRMSubmitter,
	chat ChatGateway,
	log logger.ILogger,
) IVerificationService {
	return &verificationService{
		sessionRepo: sessionRepo,
		crm:         crm,
		chat:        chat,
		logger:      log,
	}
}

func (s *verificationService) HandleCallback(ctx context.Context, query *dto.CallbackQuery) error {
	if query.Message == nil {
		return fmt.Errorf("%w: callback without message", entity.ErrValidation)
	}
	chatID := query.Message.Chat.Id

	username := "unknown"
	if query.From != nil && query.From.Username != "" {
		username = query.From.Username
	}

	cb, err := callback.Decode(query.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	s.logger.Info("Verification", "Handling callback", map[string]interface{}{
		"action":     string(cb.Action),
		"session_id": cb.SessionID,
		"chat_id":    chatID,
	})

	switch cb.Action {
	case callback.ActionVerifyOK:
		return s.handleConfirm(ctx, chatID, cb.SessionID, username, "✅ Супер! Данные переданы, ID заявки: %s")
	case callback.ActionVerifyEdit:
		return s.handleEditMenu(ctx, chatID, cb.SessionID)
	case callback.ActionEditField:
		return s.handleFieldSelect(ctx, chatID, cb.SessionID, cb.Field)
	case callback.ActionEditDone:
		return s.handleEditDone(ctx, chatID, cb.SessionID)
	case callback.ActionEditOK:
		return s.handleConfirm(ctx, chatID, cb.SessionID, username, "✅ Данные переданы, ID заявки: %s")
	}
	return nil
}

// handleConfirm is the terminal transition: submit to the CRM, report the
// outcome and remove the session. A CRM soft failure changes the message,
// never the cleanup.
func (s *verificationService) handleConfirm(ctx context.Context, chatID int64, sessionID, username, successFormat string) error {
	session, ok := s.resolve(ctx, chatID, sessionID)
	if !ok {
		return nil
	}

	finalData := utils.FormatFinal(session.Fields)

	var message string
	itemID, err := s.crm.Submit(ctx, session.Fields, chatID, username)
	if err != nil {
		s.logger.Warn("Verification", "CRM submission failed, completing anyway", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		message = "⚠️ Данные обработаны, но возникла ошибка при отправке в Битрикс24\n\n" + finalData
	} else {
		message = fmt.Sprintf(successFormat, itemID) + "\n\n" + finalData
	}

	if err := s.chat.SendMessage(ctx, chatID, message); err != nil {
		s.logger.Error("Verification", "Failed to send result message", map[string]interface{}{"error": err.Error(), "session_id": sessionID})
	}

	if _, err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		s.logger.Error("Verification", "Failed to delete session", map[string]interface{}{"error": err.Error(), "session_id": sessionID})
		return err
	}

	s.logger.Info("Verification", "Record confirmed", map[string]interface{}{"session_id": sessionID, "chat_id": chatID})
	return nil
}

func (s *verificationService) handleEditMenu(ctx context.Context, chatID int64, sessionID string) error {
	session, ok := s.resolve(ctx, chatID, sessionID)
	if !ok {
		return nil
	}

	// Persist the transition before showing the menu: a store failure must
	// not leave the menu displayed against a session that never left
	// pending_verification.
	if _, err := s.sessionRepo.Update(ctx, sessionID, entity.SessionUpdate{
		Status: entity.StatusPtr(entity.StatusEditing),
	}); err != nil {
		return err
	}

	return s.chat.SendKeyboard(ctx, chatID, utils.FormatForEdit(session.Fields), telegram.EditKeyboard(sessionID))
}

func (s *verificationService) handleFieldSelect(ctx context.Context, chatID int64, sessionID, field string) error {
	session, ok := s.resolve(ctx, chatID, sessionID)
	if !ok {
		return nil
	}

	currentValue, err := session.Fields.Get(field)
	if err != nil {
		s.logger.Warn("Verification", "Field select with unknown field", map[string]interface{}{"field": field, "session_id": sessionID})
		return err
	}

	if _, err := s.sessionRepo.Update(ctx, sessionID, entity.SessionUpdate{
		FieldBeingEdited: entity.StringPtr(field),
		Status:           entity.StatusPtr(entity.StatusAwaitingEdit),
	}); err != nil {
		return err
	}

	prompt := fmt.Sprintf(
		"✏️ Введите новое значение для <b>%s</b>:\n\nТекущее значение: <code>%s</code>\n\nПросто напишите новое значение сообщением:",
		field, currentValue,
	)
	return s.chat.SendMessage(ctx, chatID, prompt)
}

func (s *verificationService) handleEditDone(ctx context.Context, chatID int64, sessionID string) error {
	session, ok := s.resolve(ctx, chatID, sessionID)
	if !ok {
		return nil
	}

	text := "✅ Редактирование завершено!\n\n" + utils.FormatFinal(session.Fields) + "\n\nВсё верно?"
	return s.chat.SendKeyboard(ctx, chatID, text, telegram.FinalConfirmKeyboard(sessionID))
}

// HandleText routes a free-text message into the chat's session awaiting a
// replacement value. With no such session the message is silently ignored:
// multiple concurrently open edit sessions per chat are not disambiguated.
func (s *verificationService) HandleText(ctx context.Context, chatID int64, text string) error {
	session, err := s.sessionRepo.FindOneAwaitingEdit(ctx, chatID)
	if err != nil {
		return err
	}
	if session == nil || session.FieldBeingEdited == "" {
		return nil
	}

	fields := session.Fields
	if err := fields.Set(session.FieldBeingEdited, text); err != nil {
		return err
	}

	updated, err := s.sessionRepo.Update(ctx, session.Id, entity.SessionUpdate{
		Fields:           entity.FieldsPtr(fields),
		Status:           entity.StatusPtr(entity.StatusEditing),
		FieldBeingEdited: entity.StringPtr(""),
	})
	if err != nil {
		return err
	}

	return s.chat.SendKeyboard(ctx, chatID, utils.FormatForEdit(updated.Fields), telegram.EditKeyboard(session.Id))
}

// resolve loads the session and tells the user when a callback targets a
// session that is gone. Persistence failures are not reported as a miss.
func (s *verificationService) resolve(ctx context.Context, chatID int64, sessionID string) (*entity.Session, bool) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("Verification", "Session lookup failed", map[string]interface{}{"error": err.Error(), "session_id": sessionID})
		message := "❌ Произошла ошибка, попробуйте позже"
		if errors.Is(err, entity.ErrNotFound) {
			message = msgSessionNotFound
		}
		if sendErr := s.chat.SendMessage(ctx, chatID, message); sendErr != nil {
			s.logger.Error("Verification", "Failed to send lookup failure message", map[string]interface{}{"error": sendErr.Error()})
		}
		return nil, false
	}
	return session, true
}
