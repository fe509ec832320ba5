// Package repo implements the data persistence layer for the optional SQLite
// backing store. This file provides repository functions for the teacher
// directory and the group list.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListTeachers returns all teachers ordered by last name. It returns an empty
// slice when the table is empty. On DB error, it returns the error.
func ListTeachers(ctx context.Context, db *gorm.DB) ([]domain.Teacher, error) {
	var out []domain.Teacher
	err := db.WithContext(ctx).
		Order("apellidos, nombre").
		Find(&out).Error
	return out, err
}

// CreateTeacher inserts a directory row. Useful for seeding and tests.
func CreateTeacher(ctx context.Context, db *gorm.DB, firstName, lastName string) (*domain.Teacher, error) {
	t := &domain.Teacher{FirstName: firstName, LastName: lastName}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ListGroups returns all groups in insertion order. An empty result is not an
// error; callers decide whether to fall back to a built-in list.
func ListGroups(ctx context.Context, db *gorm.DB) ([]domain.Group, error) {
	var out []domain.Group
	err := db.WithContext(ctx).
		Order("id").
		Find(&out).Error
	return out, err
}

// CreateGroup inserts a group row.
func CreateGroup(ctx context.Context, db *gorm.DB, name string) (*domain.Group, error) {
	g := &domain.Group{Name: name}
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}
