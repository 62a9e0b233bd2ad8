package organize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/library"
	"github.com/shelfmark/shelfmark/internal/merge"
	"github.com/shelfmark/shelfmark/internal/nfo"
)

var (
	ErrNoOutputDir  = errors.New("no output directory configured")
	ErrMissingTitle = errors.New("canonical record has no title")
)

// Plan describes where a movie will land before anything is moved.
type Plan struct {
	MovieID    string `json:"movieId"`
	SourcePath string `json:"sourcePath"`
	FolderName string `json:"folderName"`
	TargetDir  string `json:"targetDir"`
	TargetPath string `json:"targetPath"`
}

// Result reports what Execute actually did.
type Result struct {
	Plan
	NFOPath string `json:"nfoPath"`
}

// Service moves scraped movies into the output directory and writes the
// metadata sidecar next to them.
type Service struct {
	settings *config.Store
	library  *library.Service
	logger   zerolog.Logger
}

// NewService creates a new organizer service. Library settings are read per
// plan, so template and output directory edits apply without a restart.
func NewService(settings *config.Store, lib *library.Service, logger zerolog.Logger) *Service {
	return &Service{
		settings: settings,
		library:  lib,
		logger:   logger.With().Str("component", "organizer").Logger(),
	}
}

// Plan computes the target layout for a movie from its canonical record.
// It allocates a folder name that does not collide with existing entries.
func (s *Service) Plan(ctx context.Context, movieID string) (*Plan, error) {
	libCfg := s.settings.Library()
	if libCfg.OutputDir == "" {
		return nil, ErrNoOutputDir
	}

	movie, err := s.library.Get(ctx, movieID)
	if err != nil {
		return nil, err
	}
	canonical, err := s.library.Canonical(ctx, movieID)
	if err != nil {
		return nil, err
	}

	folder := FormatFolder(libCfg.FolderTemplate, planTokens(movie, canonical))
	if folder == "" {
		return nil, ErrMissingTitle
	}

	targetDir := allocateDir(libCfg.OutputDir, folder)
	return &Plan{
		MovieID:    movieID,
		SourcePath: movie.Path,
		FolderName: filepath.Base(targetDir),
		TargetDir:  targetDir,
		TargetPath: filepath.Join(targetDir, filepath.Base(movie.Path)),
	}, nil
}

// Execute carries out the plan: creates the folder, moves the video file,
// writes movie.nfo and updates the stored library path.
func (s *Service) Execute(ctx context.Context, movieID string) (*Result, error) {
	plan, err := s.Plan(ctx, movieID)
	if err != nil {
		return nil, err
	}

	canonical, err := s.library.Canonical(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(plan.TargetDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}
	if err := s.moveFile(plan.SourcePath, plan.TargetPath); err != nil {
		return nil, err
	}

	nfoPath, err := nfo.Write(plan.TargetDir, canonical)
	if err != nil {
		return nil, err
	}

	newPath := plan.TargetPath
	if _, err := s.library.Update(ctx, movieID, library.UpdateMovieInput{Path: &newPath}); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", movieID).
		Str("target", plan.TargetPath).
		Msg("Organized movie")

	return &Result{Plan: *plan, NFOPath: nfoPath}, nil
}

// planTokens prefers canonical metadata and falls back to the scan hints.
func planTokens(movie *library.Movie, canonical *merge.CanonicalRecord) Tokens {
	tokens := Tokens{
		Title:  movie.ScanTitle,
		Year:   movie.ScanYear,
		Studio: canonical.Fields[merge.FieldStudio],
	}
	if title, ok := canonical.Value(merge.FieldTitle); ok {
		tokens.Title = title
	}
	if date, ok := canonical.Value(merge.FieldReleaseDate); ok && len(date) >= 4 {
		if year, err := strconv.Atoi(date[:4]); err == nil {
			tokens.Year = year
		}
	}
	return tokens
}

// allocateDir returns root/folder, suffixing " (2)", " (3)", ... while the
// candidate already exists.
func allocateDir(root, folder string) string {
	candidate := filepath.Join(root, folder)
	for n := 2; ; n++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(root, fmt.Sprintf("%s (%d)", folder, n))
	}
}

// moveFile renames when possible and falls back to copy + delete for
// cross-filesystem moves.
func (s *Service) moveFile(sourcePath, destPath string) error {
	if err := os.Rename(sourcePath, destPath); err == nil {
		return nil
	}

	if err := s.copyFile(sourcePath, destPath); err != nil {
		return err
	}
	if err := os.Remove(sourcePath); err != nil {
		s.logger.Warn().Err(err).Str("path", sourcePath).Msg("Failed to remove source file after copy")
	}
	return nil
}

func (s *Service) copyFile(sourcePath, destPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer source.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, source); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}
