// Package domain defines the core persistence models for the application.
package domain

import "time"

// Idempotency records the outcome of a previously processed absence-creation
// request, keyed by the client-supplied Idempotency-Key and the absence date.
// It lets retried POSTs return the originally created absence without writing
// a duplicate. Only available with the SQLite backing store.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_key_fecha,priority:1"`
	Date      string    `gorm:"column:fecha;type:TEXT NOT NULL;uniqueIndex:ux_key_fecha,priority:2"`
	AbsenceID string    `gorm:"column:ausencia_id;type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
