package objstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chatlog"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
)

// exportBatchSize caps how many chat-log rows one archive object holds.
const exportBatchSize = 500

// Uploader is the subset of Client the archiver needs.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Archiver periodically exports un-exported chat-log rows to object
// storage as zstd-compressed JSON. A failed tick logs and retries on the
// next interval; exports never affect request handling.
type Archiver struct {
	store    *chatlog.Store
	uploader Uploader
	prefix   string
	interval time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	// newObjectID is swappable in tests for deterministic keys.
	newObjectID func() string
}

// NewArchiver creates an archiver over the chat-log store.
func NewArchiver(store *chatlog.Store, uploader Uploader, prefix string, interval time.Duration, log *logger.Logger, m *metrics.Metrics) *Archiver {
	return &Archiver{
		store:       store,
		uploader:    uploader,
		prefix:      prefix,
		interval:    interval,
		log:         log.WithModule("archiver"),
		metrics:     m,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		newObjectID: uuid.NewString,
	}
}

// Start launches the background export loop.
func (a *Archiver) Start(ctx context.Context) {
	go a.run(ctx)
}

func (a *Archiver) run(ctx context.Context) {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopCh:
			return
		case <-ticker.C:
			if err := a.ExportOnce(ctx); err != nil {
				a.log.WithError(err).Warn("archive export failed")
			}
		}
	}
}

// Stop signals the loop to exit and waits for it to finish.
func (a *Archiver) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
	<-a.doneCh
}

// ExportOnce ships all pending chat-log rows, batch by batch.
// Objects are keyed as {prefix}/{date}/{uuid}.json.zst.
func (a *Archiver) ExportOnce(ctx context.Context) error {
	for {
		entries, err := a.store.UnexportedEntries(ctx, exportBatchSize)
		if err != nil {
			a.recordExport(false)
			return fmt.Errorf("load pending entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		if err := a.exportBatch(ctx, entries); err != nil {
			a.recordExport(false)
			return err
		}
		a.recordExport(true)

		if len(entries) < exportBatchSize {
			return nil
		}
	}
}

func (a *Archiver) exportBatch(ctx context.Context, entries []chatlog.Entry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	compressed, err := Compress(payload)
	if err != nil {
		return fmt.Errorf("compress batch: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json.zst",
		a.prefix, time.Now().UTC().Format("2006-01-02"), a.newObjectID())

	if _, err := a.uploader.Upload(ctx, key, bytes.NewReader(compressed), "application/zstd"); err != nil {
		return fmt.Errorf("upload batch: %w", err)
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := a.store.MarkExported(ctx, ids); err != nil {
		// The batch was uploaded but not flagged; the next tick re-exports
		// it, which duplicates rows in the archive rather than losing them.
		return fmt.Errorf("mark batch exported: %w", err)
	}

	a.log.WithFields(map[string]any{
		"key":     key,
		"entries": len(entries),
		"bytes":   len(compressed),
	}).Info("exported chat-log batch")
	return nil
}

func (a *Archiver) recordExport(ok bool) {
	if a.metrics == nil {
		return
	}
	status := "success"
	if !ok {
		status = "error"
	}
	a.metrics.RecordArchiveExport(status)
}
