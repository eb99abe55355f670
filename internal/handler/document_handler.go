package handler

import (
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/service"
	"github.com/noah-isme/scribe-go-api/internal/utils"
)

// DocumentHandler manages document and version chain endpoints.
type DocumentHandler struct {
	documents service.DocumentService
	ingest    service.IngestService
	analysis  service.AnalysisService
	logger    zerolog.Logger
}

// NewDocumentHandler builds a document handler instance.
func NewDocumentHandler(documents service.DocumentService, ingest service.IngestService, analysis service.AnalysisService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		ingest:    ingest,
		analysis:  analysis,
		logger:    logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/ingest", h.ingestFile)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/versions", h.versions)
	router.Post("/:id/analysis", h.analyze)
	router.Get("/:id/analysis", h.latestAnalysis)
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	filter := dto.DocumentFilter{Search: c.Query("search")}

	ownerID, err := parseQueryUint(c, "owner_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid owner_id")
	}
	filter.OwnerID = ownerID

	groupID, err := parseQueryUint(c, "group_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group_id")
	}
	filter.GroupID = groupID

	if filter.Page, err = parseQueryInt(c, "page"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if filter.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	documents, err := h.documents.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "documents retrieved", documents)
}

func (h *DocumentHandler) create(c *fiber.Ctx) error {
	var payload dto.DocumentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	document, err := h.documents.Create(c.Context(), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document created", document)
}

func (h *DocumentHandler) ingestFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "could not read file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "could not read file")
	}

	groupID, err := parseQueryUint(c, "group_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group_id")
	}

	document, err := h.ingest.Ingest(c.Context(), dto.DocumentIngestRequest{
		Filename: fileHeader.Filename,
		Title:    c.FormValue("title"),
		GroupID:  groupID,
		Data:     data,
	}, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document ingested", document)
}

func (h *DocumentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	document, err := h.documents.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "document retrieved", document)
}

func (h *DocumentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	var payload dto.DocumentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	document, err := h.documents.Update(c.Context(), id, payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "version appended", document)
}

func (h *DocumentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	if err := h.documents.Delete(c.Context(), id, userIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "document deleted", fiber.Map{"id": id})
}

func (h *DocumentHandler) versions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	versions, err := h.documents.ListVersions(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "versions retrieved", versions)
}

func (h *DocumentHandler) analyze(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	analysis, err := h.analysis.Analyze(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document analyzed", analysis)
}

func (h *DocumentHandler) latestAnalysis(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	analysis, err := h.analysis.GetLatest(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "analysis retrieved", analysis)
}

func (h *DocumentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "document not found")
	case errors.Is(err, service.ErrAnalysisNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "analysis not found")
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrDocumentConflict):
		return utils.SendError(c, fiber.StatusConflict, "document version conflict")
	case errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "unsupported file type")
	case errors.Is(err, service.ErrEmptyDocument):
		return utils.SendError(c, fiber.StatusBadRequest, "document has no text content")
	case errors.Is(err, service.ErrAnalyzerUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "analysis oracle unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
