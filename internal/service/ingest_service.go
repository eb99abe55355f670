package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
)

// ErrUnsupportedFileType indicates the upload is not a text format we ingest.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrEmptyDocument indicates extraction produced no usable text.
var ErrEmptyDocument = errors.New("document has no text content")

// FileUploader stores the original upload and returns a public URL.
// *cloudinary.Service satisfies it.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// TextExtractor turns an uploaded file into plain text or HTML for versioning.
type TextExtractor interface {
	Extract(ctx context.Context, mime string, data []byte) (content string, format string, err error)
}

// IngestService turns an uploaded file into the first version of a document
// lineage. The original upload is archived verbatim; only the extracted text
// enters the version chain.
type IngestService interface {
	Ingest(ctx context.Context, upload dto.DocumentIngestRequest, actorID uint) (dto.DocumentResponse, error)
}

type ingestService struct {
	documents DocumentService
	uploader  FileUploader
	extractor TextExtractor
	logger    zerolog.Logger
}

// NewIngestService constructs an IngestService instance. The uploader is
// optional; without it the original file is simply not archived.
func NewIngestService(documents DocumentService, uploader FileUploader, extractor TextExtractor, logger zerolog.Logger) IngestService {
	if extractor == nil {
		extractor = PlainTextExtractor{}
	}

	return &ingestService{
		documents: documents,
		uploader:  uploader,
		extractor: extractor,
		logger:    logger.With().Str("component", "ingest_service").Logger(),
	}
}

func (s *ingestService) Ingest(ctx context.Context, upload dto.DocumentIngestRequest, actorID uint) (dto.DocumentResponse, error) {
	if len(upload.Data) == 0 {
		return dto.DocumentResponse{}, ErrEmptyDocument
	}

	detected := mimetype.Detect(upload.Data)
	if !ingestableMIME(detected) {
		return dto.DocumentResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, detected.String())
	}

	content, format, err := s.extractor.Extract(ctx, detected.String(), upload.Data)
	if err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("extract %s: %w", upload.Filename, err)
	}
	if strings.TrimSpace(content) == "" {
		return dto.DocumentResponse{}, ErrEmptyDocument
	}

	if s.uploader != nil {
		url, err := s.uploader.Upload(ctx, upload.Filename, bytes.NewReader(upload.Data))
		if err != nil {
			s.logger.Warn().Err(err).Str("filename", upload.Filename).Msg("failed to archive original upload")
		} else {
			s.logger.Info().Str("filename", upload.Filename).Str("url", url).Msg("original upload archived")
		}
	}

	title := upload.Title
	if title == "" {
		title = upload.Filename
	}

	return s.documents.Create(ctx, dto.DocumentCreateRequest{
		Title:         title,
		Content:       content,
		ContentFormat: format,
		GroupID:       upload.GroupID,
	}, actorID)
}

// ingestableMIME accepts plain text family formats only. Binary formats need a
// dedicated extractor before they can be admitted here.
func ingestableMIME(detected *mimetype.MIME) bool {
	for mime := detected; mime != nil; mime = mime.Parent() {
		switch {
		case mime.Is("text/plain"), mime.Is("text/html"), mime.Is("text/markdown"):
			return true
		}
	}
	return false
}

// PlainTextExtractor passes text formats through unchanged, mapping HTML to the
// HTML content format so sanitization kicks in downstream.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(_ context.Context, mime string, data []byte) (string, string, error) {
	format := models.ContentFormatText
	if strings.HasPrefix(mime, "text/html") {
		format = models.ContentFormatHTML
	}
	return string(data), format, nil
}
