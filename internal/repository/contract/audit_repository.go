package contract

import "context"

// AuditRepository records the developer-facing trail: extracted document
// text and every CRM exchange, success or not. Writes are best-effort;
// callers log failures but never block the workflow on them.
type AuditRepository interface {
	RecordProcessedDocument(ctx context.Context, sessionID, fileURL, extractedText string) error
	RecordCRMSubmission(ctx context.Context, request, response map[string]interface{}, status string) error
}
