// Package ingest accepts uploaded order documents into a user's open batch.
//
// An upload is validated by its declared content type, written to the
// working area under a collision-safe name and recorded in the session store.
// Downloads are bounded by a semaphore so a burst of uploads cannot exhaust
// connections or disk bandwidth.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ginjaninja78/docx-order-report/internal/session"
	"github.com/ginjaninja78/docx-order-report/pkg/utils"
)

// DocxMimeType is the only content type accepted for upload.
const DocxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DefaultMaxConcurrent is used when the configured limit is not positive.
const DefaultMaxConcurrent = 4

// ErrUnsupportedType is returned for an upload that is not a DOCX document.
// Nothing is written and the session is unchanged.
var ErrUnsupportedType = errors.New("only DOCX documents are accepted")

// Artifact is one uploaded document as announced by the transport.
type Artifact struct {
	// FileName is the name claimed by the uploader.
	FileName string

	// MimeType is the declared content type.
	MimeType string

	// Open returns the document bytes. It is only called after the content
	// type has been accepted.
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// Handler records uploads in the session store.
type Handler struct {
	store   *session.Store
	files   *utils.FileManager
	limiter *semaphore.Weighted
	logger  *zap.Logger
}

// NewHandler creates a Handler that allows at most maxConcurrent downloads
// at once.
func NewHandler(store *session.Store, files *utils.FileManager, maxConcurrent int, logger *zap.Logger) *Handler {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:   store,
		files:   files,
		limiter: semaphore.NewWeighted(int64(maxConcurrent)),
		logger:  logger,
	}
}

// Ingest validates and stores one artifact for user.
//
// RETURNS:
//   - The user's running artifact count (unchanged on any error).
//   - ErrUnsupportedType for a non-DOCX upload, or the download/write error.
func (h *Handler) Ingest(ctx context.Context, user string, a Artifact) (int, error) {
	log := h.logger.With(zap.String("user", user), zap.String("file", a.FileName))

	if a.MimeType != DocxMimeType {
		log.Info("rejected upload", zap.String("mime_type", a.MimeType))
		return h.store.Count(user), ErrUnsupportedType
	}

	// The user lock comes first: an upload waiting behind its own user's
	// finalize must not hold a download slot other users need.
	unlock := h.store.Lock(user)
	defer unlock()

	if err := h.limiter.Acquire(ctx, 1); err != nil {
		return h.store.Count(user), fmt.Errorf("waiting for download slot: %w", err)
	}
	defer h.limiter.Release(1)

	body, err := a.Open(ctx)
	if err != nil {
		log.Warn("download failed", zap.Error(err))
		return h.store.Count(user), fmt.Errorf("failed to download %s: %w", a.FileName, err)
	}
	defer body.Close()

	path := h.files.ArtifactPath(user, a.FileName)
	if err := h.files.Persist(path, body); err != nil {
		log.Error("persist failed", zap.Error(err))
		return h.store.Count(user), err
	}

	count := h.store.Record(user, path)
	log.Info("artifact recorded", zap.String("path", path), zap.Int("count", count))

	return count, nil
}
