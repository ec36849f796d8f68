// =============================================================================
// Order Report Bot - Batch Processor
// =============================================================================
//
// This module runs the finalize trigger for one user. It drains the user's
// session, extracts every artifact, builds and delivers the report, and always
// removes the drained working files.
//
// STATE MACHINE:
//   IDLE -> COLLECTING -> FINALIZING -> (DELIVERED | EMPTY | FAILED) -> IDLE
//
// FINALIZE STEPS:
//   1. Drain the session. Nothing drained -> EMPTY ("no files"), return
//   2. Extract each artifact in upload order; drop failures and records
//      without an order number
//   3. No records left -> EMPTY ("no valid data"), go to cleanup
//   4. Build the report, deliver it with a row-count caption, delete it
//   5. Cleanup: delete every drained artifact, confirm to the user
//
// Step 5 runs on every path once something was drained, including a build or
// delivery failure and a panic inside the run.
//
// =============================================================================

package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/docx-order-report/internal/extractor"
	"github.com/ginjaninja78/docx-order-report/internal/session"
	"github.com/ginjaninja78/docx-order-report/internal/types"
	"github.com/ginjaninja78/docx-order-report/pkg/utils"
)

// =============================================================================
// OUTCOMES
// =============================================================================

// State is a terminal state of one finalize run.
type State int

const (
	// StateEmpty means nothing was drained or no artifact yielded a record.
	StateEmpty State = iota

	// StateDelivered means a report was built and sent.
	StateDelivered

	// StateFailed means report generation or delivery failed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDelivered:
		return "delivered"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result describes a finished finalize run.
type Result struct {
	// State is the terminal state reached.
	State State

	// Artifacts is the number of drained artifacts.
	Artifacts int

	// Rows is the number of records in the delivered report.
	Rows int

	// Err is set when State is StateFailed.
	Err error
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Notifier talks back to the user who triggered finalize.
type Notifier interface {
	// Notify sends a text message.
	Notify(ctx context.Context, text string) error

	// Deliver sends the file at path as a downloadable document.
	Deliver(ctx context.Context, path, caption string) error
}

// ReportBuilder writes a report file from records.
type ReportBuilder interface {
	Build(records []types.FieldRecord, path string) error
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor runs finalize for any user.
type Processor struct {
	store     *session.Store
	extractor extractor.Extractor
	builder   ReportBuilder
	files     *utils.FileManager
	messages  Messages
	logger    *zap.Logger
}

// NewProcessor wires a Processor.
func NewProcessor(
	store *session.Store,
	ext extractor.Extractor,
	builder ReportBuilder,
	files *utils.FileManager,
	logger *zap.Logger,
) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:     store,
		extractor: ext,
		builder:   builder,
		files:     files,
		messages:  DefaultMessages,
		logger:    logger,
	}
}

// Finalize ends the user's batch. It blocks until the run reaches a terminal
// state. After it returns the store has no entry for user and none of the
// drained files remain on disk.
func (p *Processor) Finalize(ctx context.Context, user string, n Notifier) (result Result) {
	unlock := p.store.Lock(user)
	defer unlock()

	log := p.logger.With(zap.String("user", user), zap.String("batch_id", uuid.NewString()))

	paths := p.store.Drain(user)
	result.Artifacts = len(paths)

	if len(paths) == 0 {
		log.Info("finalize with no files")
		p.notify(ctx, log, n, p.messages.NoFiles)
		result.State = StateEmpty
		return result
	}

	defer p.cleanup(ctx, log, n, paths)

	defer func() {
		if r := recover(); r != nil {
			log.Error("finalize panicked", zap.Any("panic", r))
			result = Result{
				State:     StateFailed,
				Artifacts: len(paths),
				Err:       fmt.Errorf("finalize panicked: %v", r),
			}
			p.notify(ctx, log, n, p.messages.Failed)
		}
	}()

	log.Info("finalize started", zap.Int("artifacts", len(paths)))
	p.notify(ctx, log, n, fmt.Sprintf(p.messages.Processing, len(paths)))

	records := p.extractAll(ctx, log, paths)
	if len(records) == 0 {
		log.Info("no usable records")
		p.notify(ctx, log, n, p.messages.NoData)
		result.State = StateEmpty
		return result
	}

	reportPath := p.files.ReportPath(user)
	defer func() {
		if err := utils.Remove(reportPath); err != nil {
			log.Warn("report cleanup failed", zap.Error(err))
		}
	}()

	if err := p.builder.Build(records, reportPath); err != nil {
		log.Error("report build failed", zap.Error(err))
		p.notify(ctx, log, n, p.messages.Failed)
		result.State = StateFailed
		result.Err = fmt.Errorf("failed to build report: %w", err)
		return result
	}

	caption := fmt.Sprintf(p.messages.ReportCaption, len(records))
	if err := n.Deliver(ctx, reportPath, caption); err != nil {
		log.Error("report delivery failed", zap.Error(err))
		p.notify(ctx, log, n, p.messages.Failed)
		result.State = StateFailed
		result.Err = fmt.Errorf("failed to deliver report: %w", err)
		return result
	}

	log.Info("report delivered", zap.Int("rows", len(records)), zap.String("report", reportPath))
	result.State = StateDelivered
	result.Rows = len(records)
	return result
}

// extractAll runs the extractor over every path in order and keeps the
// records that carry an order number. Failures are logged and skipped.
func (p *Processor) extractAll(ctx context.Context, log *zap.Logger, paths []string) []types.FieldRecord {
	records := make([]types.FieldRecord, 0, len(paths))

	for _, path := range paths {
		record, err := p.extractOne(ctx, path)
		if err != nil {
			log.Warn("extraction failed", zap.String("path", path), zap.Error(err))
			continue
		}
		if !record.Valid() {
			log.Warn("record has no order number", zap.String("path", path))
			continue
		}
		records = append(records, record)
	}

	return records
}

// extractOne converts an extractor panic into an error for that artifact.
func (p *Processor) extractOne(ctx context.Context, path string) (record types.FieldRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor panicked: %v", r)
		}
	}()
	return p.extractor.Extract(ctx, path)
}

// cleanup deletes the drained artifacts and confirms to the user.
func (p *Processor) cleanup(ctx context.Context, log *zap.Logger, n Notifier, paths []string) {
	removed, err := utils.RemoveAll(paths)
	if err != nil {
		log.Error("artifact cleanup incomplete", zap.Int("removed", removed), zap.Error(err))
	} else {
		log.Info("artifacts removed", zap.Int("removed", removed))
	}
	p.notify(ctx, log, n, p.messages.CleanedUp)
}

// notify sends text and only logs a failure; a lost status message never
// changes the outcome of a run. Cancellation of ctx does not suppress it.
func (p *Processor) notify(ctx context.Context, log *zap.Logger, n Notifier, text string) {
	if err := n.Notify(context.WithoutCancel(ctx), text); err != nil {
		log.Warn("notify failed", zap.Error(err))
	}
}
