package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"doc-verify-bot/internal/entity"
	"doc-verify-bot/internal/model"
	"doc-verify-bot/internal/repository/contract"

	"gorm.io/gorm"
)

// extractedTextLimit caps the audited OCR prefix, in runes.
const extractedTextLimit = 1000

type AuditRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) contract.AuditRepository {
	return &AuditRepositoryImpl{db: db}
}

func (r *AuditRepositoryImpl) RecordProcessedDocument(ctx context.Context, sessionID, fileURL, extractedText string) error {
	if utf8.RuneCountInString(extractedText) > extractedTextLimit {
		extractedText = string([]rune(extractedText)[:extractedTextLimit])
	}
	doc := model.ProcessedDocument{
		SessionId:     sessionID,
		FileURL:       fileURL,
		ExtractedText: extractedText,
	}
	if err := r.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return fmt.Errorf("%w: record processed document: %v", entity.ErrPersistence, err)
	}
	return nil
}

func (r *AuditRepositoryImpl) RecordCRMSubmission(ctx context.Context, request, response map[string]interface{}, status string) error {
	requestJSON, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("%w: marshal crm request: %v", entity.ErrPersistence, err)
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("%w: marshal crm response: %v", entity.ErrPersistence, err)
	}

	entry := model.CRMLog{
		RequestData:  requestJSON,
		ResponseData: responseJSON,
		Status:       status,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("%w: record crm submission: %v", entity.ErrPersistence, err)
	}
	return nil
}
