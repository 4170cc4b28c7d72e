package services

import (
	"encoding/json"
	"fmt"
	"time"

	"mandi-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditRecorder files a history record for every update of a customer,
// stock lot, sale or credit. It stores the document as it was before the
// update and the raw update payload (not the merged result); readers merge
// them with HistoryRecord.Merged. Creates and deletes are not recorded.
type AuditRecorder struct {
	now func() time.Time
}

func (r *AuditRecorder) Record(tx *gorm.DB, kind models.HistoryKind, key string, before any, payload map[string]any, actor string) error {
	table := kind.Table()
	if table == "" {
		return fmt.Errorf("unknown history kind %q", kind)
	}
	prev, err := json.Marshal(before)
	if err != nil {
		return fmt.Errorf("encode previous %s: %w", kind, err)
	}
	next, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode update payload for %s: %w", kind, err)
	}

	rec := models.HistoryRecord{
		EntityKey:     key,
		PreviousData:  datatypes.JSON(prev),
		NewData:       datatypes.JSON(next),
		FormatVersion: models.HistoryFormatRawPayload,
		ModifiedBy:    actor,
		ModifiedAt:    r.now(),
	}
	return tx.Table(table).Create(&rec).Error
}

// List returns history newest first, optionally for a single entity key.
func (r *AuditRecorder) List(tx *gorm.DB, kind models.HistoryKind, key string, limit int) ([]models.HistoryRecord, error) {
	table := kind.Table()
	if table == "" {
		return nil, validationError("unknown history kind %q", kind)
	}
	q := tx.Table(table).Order("modified_at desc, id desc")
	if key != "" {
		q = q.Where("entity_key = ?", key)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.HistoryRecord
	err := q.Find(&out).Error
	return out, err
}
