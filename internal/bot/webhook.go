package bot

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxUpdateSize caps a webhook request body. Updates reference files by id,
// so they stay small.
const maxUpdateSize = 1 << 20

// NewRouter returns the webhook HTTP handler. Updates are accepted at path
// (the secret token path) and handled asynchronously; GET /healthz answers
// liveness probes.
func NewRouter(b *Bot, path string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post(path, b.webhookHandler)

	return r
}

func (b *Bot) webhookHandler(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateSize)).Decode(&update); err != nil {
		b.logger.Warn("bad webhook payload",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}

	// The platform retries slow webhooks, so reply first and work after.
	b.Dispatch(context.WithoutCancel(r.Context()), update)
	w.WriteHeader(http.StatusOK)
}
