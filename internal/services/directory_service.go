// Package services – DirectoryService
//
// This file implements the merged staff directory and the group list. The
// directory concatenates the local teacher table with every remote profile
// feed, deduplicating by full name so a teacher known to several school
// groups appears once, tagged with the first source that produced them.
package services

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/repo"
)

// externalIDStart numbers externally sourced directory entries from 100 so
// they never collide with local directory ids.
const externalIDStart = 100

// groupsFallback is served when no backing store is configured or the group
// table is empty.
var groupsFallback = []domain.Group{
	{ID: 1, Name: "1º ESO A"},
	{ID: 2, Name: "2º ESO B"},
	{ID: 3, Name: "Sala Profesores"},
}

// ProfileSource is a remote teacher directory feed. Implementations absorb
// their own failures and return an empty slice.
type ProfileSource interface {
	Teachers(ctx context.Context) []domain.TeacherProfile
}

// DirectoryService merges the local teacher table with remote profile feeds
// and serves the group list.
type DirectoryService struct {
	// DB is the optional backing store handle; nil disables the local leg.
	DB *gorm.DB
	// Remotes are queried concurrently; their order fixes dedupe priority
	// after the local leg.
	Remotes []ProfileSource
}

// NewDirectoryService constructs a DirectoryService. db may be nil.
func NewDirectoryService(db *gorm.DB, remotes ...ProfileSource) *DirectoryService {
	return &DirectoryService{DB: db, Remotes: remotes}
}

// Teachers returns the merged directory. Local rows come first and keep
// their ids; remote entries are deduplicated against them by full name,
// first occurrence wins. Any leg failing only shrinks the result: a broken
// local table is logged and the remote feeds still serve.
func (s *DirectoryService) Teachers(ctx context.Context) ([]domain.TeacherProfile, error) {
	out := []domain.TeacherProfile{}
	fold := cases.Lower(language.Spanish)
	seen := make(map[string]struct{})

	if s.DB != nil {
		local, err := repo.ListTeachers(ctx, s.DB)
		if err != nil {
			log.Warn().Err(err).Msg("directory: local teacher table unavailable")
			local = nil
		}
		for _, t := range local {
			key := fold.String(strings.TrimSpace(t.FullName()))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, domain.TeacherProfile{
				ID:        int(t.ID),
				FirstName: t.FirstName,
				LastName:  t.LastName,
				Origin:    string(domain.SourceLocal),
			})
		}
	}

	results := make([][]domain.TeacherProfile, len(s.Remotes))
	var wg sync.WaitGroup
	for i, src := range s.Remotes {
		wg.Add(1)
		go func(i int, src ProfileSource) {
			defer wg.Done()
			results[i] = src.Teachers(ctx)
		}(i, src)
	}
	wg.Wait()

	nextID := externalIDStart
	for _, profiles := range results {
		for _, p := range profiles {
			full := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
			if full == "" {
				continue
			}
			key := fold.String(full)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			p.ID = nextID
			nextID++
			out = append(out, p)
		}
	}
	return out, nil
}

// Groups returns the group list, falling back to the built-in defaults when
// no backing store is configured or the table is empty or unreachable.
func (s *DirectoryService) Groups(ctx context.Context) ([]domain.Group, error) {
	if s.DB == nil {
		return groupsFallback, nil
	}
	groups, err := repo.ListGroups(ctx, s.DB)
	if err != nil {
		log.Warn().Err(err).Msg("directory: group table unavailable")
		return groupsFallback, nil
	}
	if len(groups) == 0 {
		return groupsFallback, nil
	}
	return groups, nil
}
