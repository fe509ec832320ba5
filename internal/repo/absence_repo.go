// Package repo implements the data persistence layer for the optional SQLite
// backing store. This file provides repository functions for locally stored
// absences and cover assignments, used by the GORM-backed Store.
//
// Error semantics:
//   - When a row is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// InsertAbsence persists a locally created absence row.
func InsertAbsence(ctx context.Context, db *gorm.DB, a *domain.Absence) error {
	return db.WithContext(ctx).Create(a).Error
}

// DeleteAbsence removes an absence and cascades to every assignment that
// references it, inside one transaction. Returns ErrNotFound when no absence
// row matched.
func DeleteAbsence(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.Absence{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("ausencia_id = ?", id).Delete(&domain.Assignment{}).Error
	})
}

// ListAbsencesByDate returns all locally stored absences for a date, oldest
// first so panel ordering is stable.
func ListAbsencesByDate(ctx context.Context, db *gorm.DB, date string) ([]domain.Absence, error) {
	var out []domain.Absence
	err := db.WithContext(ctx).
		Where("fecha = ?", date).
		Order("created_at").
		Find(&out).Error
	return out, err
}

// InsertAssignment persists a cover assignment. The referenced absence is
// deliberately not validated; dangling assignments are tolerated.
func InsertAssignment(ctx context.Context, db *gorm.DB, g *domain.Assignment) error {
	return db.WithContext(ctx).Create(g).Error
}

// DeleteAssignment removes one assignment by id. Returns ErrNotFound when no
// row matched.
func DeleteAssignment(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Assignment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAssignmentsByDate returns all assignments for a date, oldest first.
func ListAssignmentsByDate(ctx context.Context, db *gorm.DB, date string) ([]domain.Assignment, error) {
	var out []domain.Assignment
	err := db.WithContext(ctx).
		Where("fecha = ?", date).
		Order("created_at").
		Find(&out).Error
	return out, err
}
