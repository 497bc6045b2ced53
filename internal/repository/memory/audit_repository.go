package memory

import (
	"context"
	"sync"

	"doc-verify-bot/internal/repository/contract"
)

// AuditRepository buffers audit entries in memory. Used when no audit DSN
// is configured, and as a recording double in tests.
type AuditRepository struct {
	mu        sync.Mutex
	documents []ProcessedDocumentEntry
	crm       []CRMSubmissionEntry
}

type ProcessedDocumentEntry struct {
	SessionID     string
	FileURL       string
	ExtractedText string
}

type CRMSubmissionEntry struct {
	Request  map[string]interface{}
	Response map[string]interface{}
	Status   string
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

var _ contract.AuditRepository = (*AuditRepository)(nil)

func (r *AuditRepository) RecordProcessedDocument(ctx context.Context, sessionID, fileURL, extractedText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents = append(r.documents, ProcessedDocumentEntry{
		SessionID:     sessionID,
		FileURL:       fileURL,
		ExtractedText: extractedText,
	})
	return nil
}

func (r *AuditRepository) RecordCRMSubmission(ctx context.Context, request, response map[string]interface{}, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.crm = append(r.crm, CRMSubmissionEntry{Request: request, Response: response, Status: status})
	return nil
}

func (r *AuditRepository) ProcessedDocuments() []ProcessedDocumentEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProcessedDocumentEntry(nil), r.documents...)
}

func (r *AuditRepository) CRMSubmissions() []CRMSubmissionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CRMSubmissionEntry(nil), r.crm...)
}
