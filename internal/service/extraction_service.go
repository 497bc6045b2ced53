package service

import (
	"context"
	"fmt"
	"strings"

	"doc-verify-bot/internal/dto"
	"doc-verify-bot/internal/entity"
	"doc-verify-bot/internal/pkg/logger"
	"doc-verify-bot/internal/repository/contract"
	"doc-verify-bot/pkg/telegram"
	"doc-verify-bot/pkg/utils"
)

type IExtractionService interface {
	// ProcessPhoto runs the full pipeline for one photo event. All failures
	// are reported to the user in plain language; the returned error is for
	// the worker's log only.
	ProcessPhoto(ctx context.Context, chatID int64, photos []dto.PhotoSize) error
}

type extractionService struct {
	sessionRepo contract.SessionRepository
	auditRepo   contract.AuditRepository
	chat        ChatGateway
	fileStore   FileStore
	extractor   TextExtractor
	analyzer    FieldAnalyzer
	logger      logger.ILogger
}

func NewExtractionService(
	sessionRepo contract.SessionRepository,
	auditRepo contract.AuditRepository,
	chat ChatGateway,
	fileStore FileStore,
	extractor TextExtractor,
	analyzer FieldAnalyzer,
	log logger.ILogger,
) IExtractionService {
	return &extractionService{
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		chat:        chat,
		fileStore:   fileStore,
		extractor:   extractor,
		analyzer:    analyzer,
		logger:      log,
	}
}

func (s *extractionService) ProcessPhoto(ctx context.Context, chatID int64, photos []dto.PhotoSize) error {
	if len(photos) == 0 {
		return fmt.Errorf("%w: photo event without variants", entity.ErrValidation)
	}

	s.notify(ctx, chatID, "📥 Загружаю фото...")

	session, err := s.sessionRepo.Create(ctx, chatID)
	if err != nil {
		s.logger.Error("Extraction", "Failed to create session", map[string]interface{}{"error": err.Error(), "chat_id": chatID})
		s.notify(ctx, chatID, "❌ Ошибка создания сессии")
		return err
	}

	// Variants arrive ordered lowest to highest resolution; the
	// second-highest trades OCR accuracy against transfer cost.
	photo := photos[len(photos)-1]
	if len(photos) >= 2 {
		photo = photos[len(photos)-2]
	}

	fileURL, err := s.storePhoto(ctx, session.Id, photo.FileId)
	if err != nil {
		s.logger.Error("Extraction", "Failed to store photo", map[string]interface{}{"error": err.Error(), "session_id": session.Id})
		s.notify(ctx, chatID, "❌ Ошибка загрузки файла")
		return err
	}

	s.notify(ctx, chatID, "🔍 Распознаю текст...")

	extractedText, err := s.extractor.ExtractTextFromURL(ctx, fileURL)
	if err != nil {
		// Retries are exhausted at this point. The session stays in the
		// store unprocessed, nothing advanced its status.
		s.logger.Error("Extraction", "OCR failed after retries", map[string]interface{}{"error": err.Error(), "session_id": session.Id})
		s.notify(ctx, chatID, "❌ Не удалось распознать текст. Попробуйте другое фото.")
		return err
	}

	if err := s.auditRepo.RecordProcessedDocument(ctx, session.Id, fileURL, extractedText); err != nil {
		s.logger.Warn("Extraction", "Failed to audit processed document", map[string]interface{}{"error": err.Error(), "session_id": session.Id})
	}

	s.notify(ctx, chatID, "🤖 Анализирую документ...")

	analysisResult := s.analyzer.AnalyzeText(ctx, extractedText)
	fields := utils.ParseExtractedFields(analysisResult)

	if _, err := s.sessionRepo.Update(ctx, session.Id, entity.SessionUpdate{
		RawExtractedText: entity.StringPtr(analysisResult),
		Fields:           entity.FieldsPtr(fields),
		Status:           entity.StatusPtr(entity.StatusPendingVerification),
	}); err != nil {
		s.logger.Error("Extraction", "Failed to persist extracted fields", map[string]interface{}{"error": err.Error(), "session_id": session.Id})
		s.notify(ctx, chatID, "❌ Произошла ошибка при обработке фото")
		return err
	}

	text := utils.FormatForDisplay(fields) + "\n\n<b>Проверьте данные:</b>"
	if err := s.chat.SendKeyboard(ctx, chatID, text, telegram.VerificationKeyboard(session.Id)); err != nil {
		s.logger.Error("Extraction", "Failed to present verification view", map[string]interface{}{"error": err.Error(), "session_id": session.Id})
		return err
	}

	s.logger.Info("Extraction", "Photo processed", map[string]interface{}{"chat_id": chatID, "session_id": session.Id})
	return nil
}

func (s *extractionService) storePhoto(ctx context.Context, sessionID, fileID string) (string, error) {
	filePath, err := s.chat.GetFilePath(ctx, fileID)
	if err != nil {
		return "", err
	}

	content, err := s.chat.DownloadFile(ctx, filePath)
	if err != nil {
		return "", err
	}

	ext := "jpg"
	if idx := strings.LastIndex(filePath, "."); idx >= 0 && idx < len(filePath)-1 {
		ext = filePath[idx+1:]
	}
	storedPath := fmt.Sprintf("sessions/%s/document.%s", sessionID, ext)

	if err := s.fileStore.Upload(ctx, storedPath, content, contentTypeFor(ext)); err != nil {
		return "", err
	}
	return s.fileStore.PublicURL(storedPath), nil
}

func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

// notify delivers a progress message; delivery failures are logged, never
// fatal to the pipeline.
func (s *extractionService) notify(ctx context.Context, chatID int64, text string) {
	if err := s.chat.SendMessage(ctx, chatID, text); err != nil {
		s.logger.Warn("Extraction", "Failed to send progress message", map[string]interface{}{"error": err.Error(), "chat_id": chatID})
	}
}
