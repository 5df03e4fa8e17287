package translator

import (
	"context"
	"encoding/json"
	"time"

	"lingo-load/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditEntry is one completed routing attempt handed to the audit sink.
type AuditEntry struct {
	RequestID              string
	TenantID               string
	UserID                 string
	BackendID              string
	SourceLanguage         string
	TargetLanguage         string
	OriginalText           string
	FinalText              string
	CostMicros             int64
	LatencyMs              int64
	AdditionalTranslations map[string]string
}

// AuditSink records completed translations. Record is fire-and-forget: sink
// failures never affect the pipeline result.
type AuditSink interface {
	Record(entry AuditEntry)
}

// DBAuditSink writes audit rows asynchronously through a buffered channel.
// When the buffer is full the entry is dropped with a warning rather than
// blocking the request path.
type DBAuditSink struct {
	db      *gorm.DB
	entries chan AuditEntry
	done    chan struct{}
}

// NewDBAuditSink creates the sink and starts its writer goroutine.
func NewDBAuditSink(db *gorm.DB) *DBAuditSink {
	s := &DBAuditSink{
		db:      db,
		entries: make(chan AuditEntry, 256),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Record enqueues one audit entry without blocking.
func (s *DBAuditSink) Record(entry AuditEntry) {
	select {
	case s.entries <- entry:
	default:
		logrus.WithField("request_id", entry.RequestID).Warn("Audit buffer full, dropping entry")
	}
}

// Stop drains queued entries and stops the writer. Bounded by ctx.
func (s *DBAuditSink) Stop(ctx context.Context) {
	close(s.entries)
	select {
	case <-s.done:
	case <-ctx.Done():
		logrus.Warn("Audit sink stopped before draining its queue")
	}
}

func (s *DBAuditSink) run() {
	defer close(s.done)
	for entry := range s.entries {
		s.write(entry)
	}
}

func (s *DBAuditSink) write(entry AuditEntry) {
	var additional string
	if len(entry.AdditionalTranslations) > 0 {
		if data, err := json.Marshal(entry.AdditionalTranslations); err == nil {
			additional = string(data)
		}
	}

	row := models.TranslationLog{
		RequestID:              entry.RequestID,
		TenantID:               entry.TenantID,
		UserID:                 entry.UserID,
		BackendID:              entry.BackendID,
		SourceLanguage:         entry.SourceLanguage,
		TargetLanguage:         entry.TargetLanguage,
		OriginalText:           entry.OriginalText,
		FinalText:              entry.FinalText,
		CostMicros:             entry.CostMicros,
		LatencyMs:              entry.LatencyMs,
		AdditionalTranslations: additional,
		CreatedAt:              time.Now(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		logrus.WithField("request_id", entry.RequestID).Errorf("Failed to write audit record: %v", err)
	}
}
