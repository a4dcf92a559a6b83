package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bgmanu2426/playnex-backend/pkg/auth"
	"github.com/bgmanu2426/playnex-backend/pkg/database"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

// MediaStore is what handlers need from the media host: put a file, get
// a URL back, and drop objects that are no longer referenced.
type MediaStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// Handler carries the shared collaborators of every route handler.
type Handler struct {
	db       *database.DB
	log      *zap.Logger
	tokens   *auth.TokenManager
	media    MediaStore
	validate *validator.Validate
}

func New(db *database.DB, log *zap.Logger, tokens *auth.TokenManager, media MediaStore) *Handler {
	return &Handler{
		db:       db,
		log:      log,
		tokens:   tokens,
		media:    media,
		validate: validator.New(),
	}
}

// internalError logs the cause and answers with a generic 500; the
// envelope never leaks driver errors to clients.
func (h *Handler) internalError(c *gin.Context, message string, err error) {
	h.log.Error(message, zap.Error(err), zap.String("path", c.FullPath()))
	responses.Error(c, http.StatusInternalServerError, message)
}

// discardUploads deletes objects uploaded during a request whose
// database write then failed, so they don't linger in the bucket.
// Best effort: failures are logged, not surfaced.
func (h *Handler) discardUploads(ctx context.Context, urls ...string) {
	for _, fileURL := range urls {
		if fileURL == "" {
			continue
		}
		if err := h.media.Delete(ctx, fileURL); err != nil {
			h.log.Warn("failed to delete orphaned media object",
				zap.String("url", fileURL), zap.Error(err))
		}
	}
}
