package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/docx-order-report/internal/batch"
	"github.com/ginjaninja78/docx-order-report/internal/extractor"
	"github.com/ginjaninja78/docx-order-report/internal/report"
	"github.com/ginjaninja78/docx-order-report/internal/session"
	"github.com/ginjaninja78/docx-order-report/internal/types"
	"github.com/ginjaninja78/docx-order-report/pkg/utils"
)

func newTestHandler(t *testing.T) (*Handler, *session.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store := session.NewStore()
	return NewHandler(store, utils.NewFileManager(dir, ""), 2, nil), store, dir
}

func docx(name, content string) Artifact {
	return Artifact{
		FileName: name,
		MimeType: DocxMimeType,
		Open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestHandler_RejectsOtherTypes(t *testing.T) {
	h, store, dir := newTestHandler(t)

	opened := false
	count, err := h.Ingest(context.Background(), "42", Artifact{
		FileName: "scan.pdf",
		MimeType: "application/pdf",
		Open: func(context.Context) (io.ReadCloser, error) {
			opened = true
			return io.NopCloser(strings.NewReader("pdf")), nil
		},
	})

	require.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, 0, count)
	assert.False(t, opened, "rejected upload must not be downloaded")
	assert.False(t, store.Has("42"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandler_StoresAndCounts(t *testing.T) {
	h, store, dir := newTestHandler(t)
	ctx := context.Background()

	count, err := h.Ingest(ctx, "42", docx("أمر 1.docx", "first"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = h.Ingest(ctx, "42", docx("order-2.docx", "second"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	paths := store.Drain("42")
	assert.Equal(t, []string{
		filepath.Join(dir, "42_____1.docx"),
		filepath.Join(dir, "42_order_2.docx"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestHandler_SameNameOverwrites(t *testing.T) {
	h, store, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := h.Ingest(ctx, "42", docx("a.docx", "v1"))
	require.NoError(t, err)
	count, err := h.Ingest(ctx, "42", docx("a.docx", "v2"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	paths := store.Drain("42")
	require.Len(t, paths, 1)
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestHandler_UsersDoNotCollide(t *testing.T) {
	h, store, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := h.Ingest(ctx, "1", docx("a.docx", "one"))
	require.NoError(t, err)
	_, err = h.Ingest(ctx, "2", docx("a.docx", "two"))
	require.NoError(t, err)

	p1 := store.Drain("1")
	p2 := store.Drain("2")
	assert.NotEqual(t, p1[0], p2[0])
}

func TestHandler_DownloadFailureLeavesSessionUnchanged(t *testing.T) {
	h, store, _ := newTestHandler(t)

	count, err := h.Ingest(context.Background(), "42", Artifact{
		FileName: "a.docx",
		MimeType: DocxMimeType,
		Open: func(context.Context) (io.ReadCloser, error) {
			return nil, errors.New("telegram unavailable")
		},
	})

	require.Error(t, err)
	assert.Equal(t, 0, count)
	assert.False(t, store.Has("42"))
}

func TestHandler_CancelledWhileWaitingForSlot(t *testing.T) {
	h, _, _ := newTestHandler(t)
	require.NoError(t, h.limiter.Acquire(context.Background(), 2))
	defer h.limiter.Release(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Ingest(ctx, "42", docx("a.docx", "x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandler_WaitingUploadDoesNotHoldSlot(t *testing.T) {
	dir := t.TempDir()
	store := session.NewStore()
	h := NewHandler(store, utils.NewFileManager(dir, ""), 1, nil)
	ctx := context.Background()

	// A finalize for user A holds A's lock.
	unlockA := store.Lock("A")

	aDone := make(chan error, 1)
	go func() {
		_, err := h.Ingest(ctx, "A", docx("a.docx", "a"))
		aDone <- err
	}()

	bDone := make(chan error, 1)
	go func() {
		_, err := h.Ingest(ctx, "B", docx("b.docx", "b"))
		bDone <- err
	}()

	select {
	case err := <-bDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("user B upload blocked behind user A's finalize")
	}
	assert.Equal(t, 1, store.Count("B"))
	assert.Equal(t, 0, store.Count("A"))

	unlockA()
	require.NoError(t, <-aDone)
	assert.Equal(t, 1, store.Count("A"))
}

// nopNotifier discards finalize messages and the delivered report.
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string) error          { return nil }
func (nopNotifier) Deliver(context.Context, string, string) error { return nil }

func TestHandler_UploadDuringFinalizeStartsFreshBatch(t *testing.T) {
	dir := t.TempDir()
	store := session.NewStore()
	files := utils.NewFileManager(dir, "")
	h := NewHandler(store, files, 2, nil)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	ext := extractor.Func(func(context.Context, string) (types.FieldRecord, error) {
		close(started)
		<-release
		return types.FieldRecord{OrderNumber: "123"}, nil
	})
	proc := batch.NewProcessor(store, ext, report.NewBuilder(), files, nil)

	_, err := h.Ingest(ctx, "42", docx("a.docx", "a"))
	require.NoError(t, err)

	results := make(chan batch.Result, 1)
	go func() {
		results <- proc.Finalize(ctx, "42", nopNotifier{})
	}()
	<-started

	type ingestResult struct {
		count int
		err   error
	}
	uploaded := make(chan ingestResult, 1)
	go func() {
		count, err := h.Ingest(ctx, "42", docx("b.docx", "b"))
		uploaded <- ingestResult{count, err}
	}()

	assert.Never(t, func() bool { return len(uploaded) > 0 }, 100*time.Millisecond, 10*time.Millisecond,
		"upload finished while finalize was running")

	close(release)

	res := <-results
	assert.Equal(t, batch.StateDelivered, res.State)
	assert.Equal(t, 1, res.Artifacts)

	up := <-uploaded
	require.NoError(t, up.err)
	assert.Equal(t, 1, up.count)

	paths := store.Drain("42")
	assert.Equal(t, []string{filepath.Join(dir, "42_b.docx")}, paths)
	assert.FileExists(t, paths[0])
	assert.NoFileExists(t, filepath.Join(dir, "42_a.docx"))
}
