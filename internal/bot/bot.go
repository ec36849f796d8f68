// Package bot is the chat transport: it routes Telegram updates to the
// ingestion handler and the batch processor and sends their replies.
//
// Routing:
//
//	/start          -> greeting with usage instructions
//	/done           -> finalize the sender's batch
//	document upload -> ingest into the sender's batch
//
// Everything else is ignored.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ginjaninja78/docx-order-report/internal/batch"
	"github.com/ginjaninja78/docx-order-report/internal/ingest"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot handles incoming updates.
type Bot struct {
	api       API
	ingest    *ingest.Handler
	processor *batch.Processor
	client    *http.Client
	messages  Messages
	logger    *zap.Logger

	wg sync.WaitGroup
}

// New creates a Bot. client is used to download uploaded files.
func New(api API, ing *ingest.Handler, proc *batch.Processor, client *http.Client, logger *zap.Logger) *Bot {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:       api,
		ingest:    ing,
		processor: proc,
		client:    client,
		messages:  DefaultMessages,
		logger:    logger,
	}
}

// Dispatch handles update on its own goroutine. Wait blocks until every
// dispatched update is finished.
func (b *Bot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.HandleUpdate(ctx, update)
	}()
}

// Wait blocks until all dispatched updates have been handled.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// HandleUpdate routes one update and blocks until it is handled.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	user := strconv.FormatInt(msg.From.ID, 10)
	chat := &chatNotifier{api: b.api, chatID: msg.Chat.ID}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, user, chat, msg.Command())
	case msg.Document != nil:
		b.handleDocument(ctx, user, chat, msg.Document)
	}
}

func (b *Bot) handleCommand(ctx context.Context, user string, chat *chatNotifier, command string) {
	switch command {
	case "start":
		b.reply(ctx, chat, b.messages.Start)

	case "done":
		result := b.processor.Finalize(ctx, user, chat)
		b.logger.Info("finalize finished",
			zap.String("user", user),
			zap.Stringer("state", result.State),
			zap.Int("artifacts", result.Artifacts),
			zap.Int("rows", result.Rows),
			zap.Error(result.Err))
	}
}

func (b *Bot) handleDocument(ctx context.Context, user string, chat *chatNotifier, doc *tgbotapi.Document) {
	count, err := b.ingest.Ingest(ctx, user, ingest.Artifact{
		FileName: doc.FileName,
		MimeType: doc.MimeType,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return b.download(ctx, doc.FileID)
		},
	})

	switch {
	case errors.Is(err, ingest.ErrUnsupportedType):
		b.reply(ctx, chat, b.messages.OnlyDocx)
	case err != nil:
		b.logger.Error("upload failed", zap.String("user", user), zap.Error(err))
		b.reply(ctx, chat, b.messages.UploadFailed)
	default:
		b.reply(ctx, chat, fmt.Sprintf(b.messages.Received, doc.FileName, count))
	}
}

// download fetches an uploaded file from the platform's file endpoint.
func (b *Bot) download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download file %s: status %d", fileID, resp.StatusCode)
	}

	return resp.Body, nil
}

func (b *Bot) reply(ctx context.Context, chat *chatNotifier, text string) {
	if err := chat.Notify(ctx, text); err != nil {
		b.logger.Warn("reply failed", zap.Int64("chat_id", chat.chatID), zap.Error(err))
	}
}

// =============================================================================
// CHAT NOTIFIER
// =============================================================================

// chatNotifier sends batch progress and the report to one chat.
type chatNotifier struct {
	api    API
	chatID int64
}

func (c *chatNotifier) Notify(_ context.Context, text string) error {
	_, err := c.api.Send(tgbotapi.NewMessage(c.chatID, text))
	return err
}

func (c *chatNotifier) Deliver(_ context.Context, path, caption string) error {
	doc := tgbotapi.NewDocument(c.chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	_, err := c.api.Send(doc)
	return err
}
