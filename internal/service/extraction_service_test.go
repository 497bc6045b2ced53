package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"doc-verify-bot/internal/dto"
	"doc-verify-bot/internal/entity"
	"doc-verify-bot/internal/repository/memory"
	"doc-verify-bot/pkg/callback"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	uploads map[string][]byte
	baseURL string
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string][]byte{}, baseURL: "https://files.test"}
}

func (f *fakeStore) Upload(_ context.Context, path string, content []byte, _ string) error {
	f.uploads[path] = content
	return nil
}

func (f *fakeStore) PublicURL(path string) string {
	return f.baseURL + "/" + path
}

type fakeExtractor struct {
	text string
	err  error
	urls []string
}

func (f *fakeExtractor) ExtractTextFromURL(_ context.Context, imageURL string) (string, error) {
	f.urls = append(f.urls, imageURL)
	return f.text, f.err
}

type fakeAnalyzer struct {
	result string
	seen   []string
}

func (f *fakeAnalyzer) AnalyzeText(_ context.Context, text string) string {
	f.seen = append(f.seen, text)
	return f.result
}

type extractionFixture struct {
	repo      *memory.SessionRepository
	audit     *memory.AuditRepository
	chat      *fakeChat
	store     *fakeStore
	extractor *fakeExtractor
	analyzer  *fakeAnalyzer
	svc       IExtractionService
}

func newExtractionFixture() *extractionFixture {
	f := &extractionFixture{
		repo:      memory.NewSessionRepository(),
		audit:     memory.NewAuditRepository(),
		chat:      newFakeChat(),
		store:     newFakeStore(),
		extractor: &fakeExtractor{},
		analyzer:  &fakeAnalyzer{},
	}
	f.svc = NewExtractionService(f.repo, f.audit, f.chat, f.store, f.extractor, f.analyzer, nopLogger{})
	return f
}

// presentedSession pulls the session id out of the confirm keyboard on the
// last message, the only place the pipeline exposes it.
func (f *extractionFixture) presentedSession(t *testing.T) *entity.Session {
	t.Helper()
	last := f.chat.lastMessage()
	require.NotNil(t, last.Keyboard)
	require.NotEmpty(t, last.Keyboard.InlineKeyboard)
	require.NotEmpty(t, last.Keyboard.InlineKeyboard[0])

	cb, err := callback.Decode(last.Keyboard.InlineKeyboard[0][0].CallbackData)
	require.NoError(t, err)
	session, err := f.repo.Get(context.Background(), cb.SessionID)
	require.NoError(t, err)
	return session
}

func (f *extractionFixture) uploadPaths() []string {
	paths := make([]string, 0, len(f.store.uploads))
	for p := range f.store.uploads {
		paths = append(paths, p)
	}
	return paths
}

func TestProcessPhotoFullPipeline(t *testing.T) {
	f := newExtractionFixture()
	f.chat.files["big"] = "photos/file_big.jpg"
	f.extractor.text = "Цех 3 Корпус ТМГ.1000.2234 55"
	f.analyzer.result = "Участок: Цех 3\nИзделие: Корпус\nНомер чертежа: ТМГ.1000.2234\nНомер изделия: 55"

	photos := []dto.PhotoSize{
		{FileId: "big", Width: 800, Height: 600},
		{FileId: "biggest", Width: 1600, Height: 1200},
	}
	err := f.svc.ProcessPhoto(context.Background(), 100, photos)
	require.NoError(t, err)

	// the second-highest resolution variant is the one fetched
	require.Len(t, f.extractor.urls, 1)
	assert.Contains(t, f.extractor.urls[0], "document.jpg")

	// image landed in the store under the session's prefix
	require.Len(t, f.uploadPaths(), 1)
	assert.True(t, strings.HasPrefix(f.uploadPaths()[0], "sessions/"))

	// session carries the parsed fields and awaits verification
	session := f.presentedSession(t)
	assert.Equal(t, entity.StatusPendingVerification, session.Status)
	assert.Equal(t, "Цех 3", session.Fields.Section)
	assert.Equal(t, "Корпус", session.Fields.Item)
	assert.Equal(t, "ТМГ.1000.2234", session.Fields.DrawingNumber)
	assert.Equal(t, "55", session.Fields.ItemNumber)

	// audit captured the OCR result
	docs := f.audit.ProcessedDocuments()
	require.Len(t, docs, 1)
	assert.Equal(t, f.extractor.text, docs[0].ExtractedText)

	last := f.chat.lastMessage()
	assert.Contains(t, last.Text, "ТМГ.1000.2234")
	assert.Contains(t, last.Text, "Проверьте данные")
}

func TestProcessPhotoSingleVariant(t *testing.T) {
	f := newExtractionFixture()
	f.chat.files["only"] = "photos/file_only.png"
	f.extractor.text = "whatever"
	f.analyzer.result = "Текст не распознан"

	err := f.svc.ProcessPhoto(context.Background(), 100, []dto.PhotoSize{{FileId: "only"}})
	require.NoError(t, err)

	require.Len(t, f.uploadPaths(), 1)
	assert.True(t, strings.HasSuffix(f.uploadPaths()[0], "document.png"))
}

func TestProcessPhotoNoVariants(t *testing.T) {
	f := newExtractionFixture()

	err := f.svc.ProcessPhoto(context.Background(), 100, nil)
	assert.True(t, errors.Is(err, entity.ErrValidation))
	assert.Empty(t, f.chat.messages)
}

func TestProcessPhotoOCRFailure(t *testing.T) {
	f := newExtractionFixture()
	f.chat.files["big"] = "photos/file_big.jpg"
	f.extractor.err = fmt.Errorf("%w: engine unavailable", entity.ErrTransport)

	err := f.svc.ProcessPhoto(context.Background(), 100, []dto.PhotoSize{{FileId: "big"}})
	require.Error(t, err)

	// pipeline stops before analysis: the user gets the failure message and
	// no verification view
	last := f.chat.lastMessage()
	assert.Contains(t, last.Text, "Не удалось распознать текст")
	assert.Nil(t, last.Keyboard)
	assert.Empty(t, f.analyzer.seen)
	assert.Empty(t, f.audit.ProcessedDocuments())

	// the session is still in the store, untouched since creation: the
	// upload path carries its id (sessions/<id>/document.<ext>)
	paths := f.uploadPaths()
	require.Len(t, paths, 1)
	parts := strings.Split(paths[0], "/")
	require.Len(t, parts, 3)

	session, err := f.repo.Get(context.Background(), parts[1])
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingVerification, session.Status)
	assert.Empty(t, session.RawExtractedText)
	assert.Equal(t, entity.NewFields(), session.Fields)
}

func TestProcessPhotoAnalyzerDegraded(t *testing.T) {
	f := newExtractionFixture()
	f.chat.files["big"] = "photos/file_big.jpg"
	f.extractor.text = "blurry scan"
	f.analyzer.result = "Ошибка анализа: 500"

	err := f.svc.ProcessPhoto(context.Background(), 100, []dto.PhotoSize{{FileId: "big"}})
	require.NoError(t, err)

	// unparseable analysis yields placeholder values; the flow still reaches
	// verification so the user can fill everything in by hand
	session := f.presentedSession(t)
	assert.Equal(t, entity.ValueUnspecified, session.Fields.Section)
	assert.Equal(t, entity.ValueUnspecified, session.Fields.DrawingNumber)
	assert.Equal(t, "Ошибка анализа: 500", session.RawExtractedText)
}

func TestProcessPhotoMissingFile(t *testing.T) {
	f := newExtractionFixture()
	// no file registered in the chat gateway

	err := f.svc.ProcessPhoto(context.Background(), 100, []dto.PhotoSize{{FileId: "gone"}})
	require.Error(t, err)
	assert.Contains(t, f.chat.lastMessage().Text, "Ошибка загрузки файла")
	assert.Empty(t, f.store.uploads)
}
