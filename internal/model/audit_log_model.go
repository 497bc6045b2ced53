package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CRMLog records every CRM exchange, including soft failures and transport
// exceptions.
type CRMLog struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestData  datatypes.JSON `gorm:"type:jsonb"`
	ResponseData datatypes.JSON `gorm:"type:jsonb"`
	Status       string         `gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time      `gorm:"default:now();not null;index"`
}

func (CRMLog) TableName() string {
	return "crm_logs"
}

// ProcessedDocument keeps the stored file URL and a prefix of the OCR output
// for each extraction run.
type ProcessedDocument struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId     string    `gorm:"type:uuid;not null;index"`
	FileURL       string    `gorm:"type:text;not null"`
	ExtractedText string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"default:now();not null"`
}

func (ProcessedDocument) TableName() string {
	return "processed_documents"
}
