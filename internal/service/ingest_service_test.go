package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
)

type stubUploader struct {
	uploads int
	err     error
}

func (s *stubUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads++
	return "https://example.com/" + name, nil
}

func newIngestServiceForTest(store *memoryDocumentStore, uploader FileUploader) IngestService {
	documents := newDocumentServiceForTest(store, newStubPolicy())
	return NewIngestService(documents, uploader, nil, testLogger())
}

func TestIngestPlainTextStartsLineage(t *testing.T) {
	store := newMemoryDocumentStore()
	uploader := &stubUploader{}
	svc := newIngestServiceForTest(store, uploader)

	created, err := svc.Ingest(context.Background(), dto.DocumentIngestRequest{
		Filename: "essay.txt",
		Title:    "My Essay",
		Data:     []byte("A plain text draft."),
	}, 7)
	require.NoError(t, err)
	require.Equal(t, "My Essay", created.Title)
	require.Equal(t, models.ContentFormatText, created.ContentFormat)
	require.Equal(t, 1, created.VersionNumber)
	require.Equal(t, 1, uploader.uploads)
}

func TestIngestFallsBackToFilenameTitle(t *testing.T) {
	store := newMemoryDocumentStore()
	svc := newIngestServiceForTest(store, nil)

	created, err := svc.Ingest(context.Background(), dto.DocumentIngestRequest{
		Filename: "untitled.txt",
		Data:     []byte("Draft without a title."),
	}, 7)
	require.NoError(t, err)
	require.Equal(t, "untitled.txt", created.Title)
}

func TestIngestHTMLSanitized(t *testing.T) {
	store := newMemoryDocumentStore()
	svc := newIngestServiceForTest(store, nil)

	created, err := svc.Ingest(context.Background(), dto.DocumentIngestRequest{
		Filename: "essay.html",
		Title:    "Rich Essay",
		Data:     []byte(`<!DOCTYPE html><html><body><p>Hello</p><script>alert("x")</script></body></html>`),
	}, 7)
	require.NoError(t, err)
	require.Equal(t, models.ContentFormatHTML, created.ContentFormat)
	require.Contains(t, created.Content, "<p>Hello</p>")
	require.NotContains(t, created.Content, "script")
}

func TestIngestRejectsBinaryUpload(t *testing.T) {
	store := newMemoryDocumentStore()
	svc := newIngestServiceForTest(store, nil)

	// PNG magic bytes.
	_, err := svc.Ingest(context.Background(), dto.DocumentIngestRequest{
		Filename: "image.png",
		Data:     []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
	}, 7)
	require.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestIngestRejectsEmptyUpload(t *testing.T) {
	store := newMemoryDocumentStore()
	svc := newIngestServiceForTest(store, nil)

	_, err := svc.Ingest(context.Background(), dto.DocumentIngestRequest{
		Filename: "empty.txt",
	}, 7)
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestIngestToleratesUploaderFailure(t *testing.T) {
	store := newMemoryDocumentStore()
	uploader := &stubUploader{err: errors.New("cdn down")}
	svc := newIngestServiceForTest(store, uploader)

	created, err := svc.Ingest(context.Background(), dto.DocumentIngestRequest{
		Filename: "essay.txt",
		Title:    "My Essay",
		Data:     []byte("Content still makes it in."),
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 1, created.VersionNumber)
}
