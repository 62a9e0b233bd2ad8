package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/library"
)

// ScanError records a path the walk could not process.
type ScanError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result contains the outcome of scanning the input directory.
type Result struct {
	RootPath   string        `json:"rootPath"`
	Movies     []ParsedMovie `json:"movies"`
	Added      int           `json:"added"`
	Known      int           `json:"known"`
	Skipped    int           `json:"skipped"`
	TotalFiles int           `json:"totalFiles"`
	Errors     []ScanError   `json:"errors"`
}

// Service walks the input directory for video files and registers new
// ones in the library.
type Service struct {
	library *library.Service
	logger  zerolog.Logger
}

// NewService creates a new scanner service.
func NewService(lib *library.Service, logger zerolog.Logger) *Service {
	return &Service{
		library: lib,
		logger:  logger.With().Str("component", "scanner").Logger(),
	}
}

// ScanFolder scans a folder for movie files without touching the library.
func (s *Service) ScanFolder(ctx context.Context, folderPath string) (*Result, error) {
	result := &Result{
		RootPath: folderPath,
		Movies:   make([]ParsedMovie, 0),
		Errors:   make([]ScanError, 0),
	}

	s.logger.Info().Str("path", folderPath).Msg("Starting folder scan")

	err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			result.Errors = append(result.Errors, ScanError{Path: path, Error: walkErr.Error()})
			return nil
		}
		if d.IsDir() || !IsVideoFile(d.Name()) {
			return nil
		}
		if IsSampleFile(d.Name()) {
			result.Skipped++
			return nil
		}

		result.TotalFiles++

		parsed := ParsePath(path)
		if info, infoErr := d.Info(); infoErr == nil {
			parsed.FileSize = info.Size()
		}
		result.Movies = append(result.Movies, *parsed)
		return nil
	})
	if err != nil {
		return result, err
	}

	s.logger.Info().
		Str("path", folderPath).
		Int("totalFiles", result.TotalFiles).
		Int("movies", len(result.Movies)).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("Folder scan completed")

	return result, nil
}

// Sync scans a folder and adds every movie the library does not know yet.
func (s *Service) Sync(ctx context.Context, folderPath string) (*Result, error) {
	result, err := s.ScanFolder(ctx, folderPath)
	if err != nil {
		return result, err
	}

	for _, parsed := range result.Movies {
		_, err := s.library.Create(ctx, library.CreateMovieInput{
			Path:      parsed.FilePath,
			ScanTitle: parsed.Title,
			ScanYear:  parsed.Year,
		})
		switch {
		case err == nil:
			result.Added++
		case errors.Is(err, library.ErrDuplicatePath):
			result.Known++
		default:
			result.Errors = append(result.Errors, ScanError{Path: parsed.FilePath, Error: err.Error()})
		}
	}

	s.logger.Info().
		Int("added", result.Added).
		Int("known", result.Known).
		Msg("Library sync completed")

	return result, nil
}
