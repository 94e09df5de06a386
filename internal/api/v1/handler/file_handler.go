package handler

import (
	"context"
	"errors"
	"net/http"

	"simsync/internal/api/v1/dto"
	"simsync/internal/api/v1/operation"
	"simsync/internal/middleware"
	"simsync/internal/service"

	"github.com/rs/zerolog"
)

const bytesPerMB = 1024 * 1024

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 32 << 20

// FileHandler implements the personal file operations
type FileHandler struct {
	fileService service.FileService
	maxUpload   int64
	logger      zerolog.Logger
}

func NewFileHandler(fileService service.FileService, maxUploadMB int64, logger zerolog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxUpload:   maxUploadMB * bytesPerMB,
		logger:      logger,
	}
}

// UploadFile stores the multipart "file" field for the caller.
// Mounted as a raw chi handler since huma does not stream multipart bodies.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploaded, err := h.fileService.Upload(r.Context(), id, header.Filename, contentType, header.Size, file)
	if err != nil {
		writeServiceError(w, h.logger, err, "Upload failed")
		return
	}
	writeJSON(w, http.StatusOK, dto.FileUploadResponseDTO{
		Message:     "File uploaded successfully",
		FileID:      uploaded.ID,
		DownloadURL: uploaded.DownloadURL,
	})
}

// ListFiles returns the caller's files, newest first
func (h *FileHandler) ListFiles(ctx context.Context, input *operation.ListFilesInput) (*operation.ListFilesOutput, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	files, err := h.fileService.List(ctx, id.UID)
	if err != nil {
		return nil, toAPIError(h.logger, err, "Failed to retrieve files")
	}

	out := make([]dto.FileMetadataDTO, 0, len(files))
	for _, f := range files {
		out = append(out, dto.FileMetadataDTO{
			ID:          f.ID,
			Name:        f.Name,
			Size:        f.Size,
			UploadDate:  f.UploadDate,
			ContentType: f.ContentType,
			DownloadURL: f.DownloadURL,
		})
	}
	return &operation.ListFilesOutput{
		Body: dto.FileListResponseDTO{Files: out, TotalCount: len(out)},
	}, nil
}

// DeleteFile removes one of the caller's files
func (h *FileHandler) DeleteFile(ctx context.Context, input *operation.DeleteFileInput) (*operation.DeleteFileOutput, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.fileService.Delete(ctx, input.FileID, id.UID); err != nil {
		return nil, toAPIError(h.logger, err, "Failed to delete file")
	}
	return &operation.DeleteFileOutput{
		Body: dto.MessageResponseDTO{Message: "File deleted successfully"},
	}, nil
}
