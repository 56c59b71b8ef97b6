package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/judo-pools/storage"
)

type ScoreSheet struct {
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
	// URL is the archived copy, empty when archiving is disabled or failed.
	URL string `json:"url,omitempty"`
}

type ExportService interface {
	ScoreSheet(ctx context.Context, categoryID int) (*ScoreSheet, error)
}

type exportService struct {
	loader        SnapshotLoader
	uploader      storage.FileUploader
	publicBaseURL string
	logger        *slog.Logger
}

// NewExportService builds the workbook exporter. uploader may be nil.
func NewExportService(loader SnapshotLoader, uploader storage.FileUploader, publicBaseURL string, logger *slog.Logger) ExportService {
	return &exportService{
		loader:        loader,
		uploader:      uploader,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

func (s *exportService) ScoreSheet(ctx context.Context, categoryID int) (*ScoreSheet, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	category, ok := snap.Category(categoryID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, categoryID)
	}
	views, err := snap.Pools(categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}

	data, err := buildScoreSheet(category.Name, views, s.publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("build score sheet of category %d: %w", categoryID, err)
	}
	sheet := &ScoreSheet{Filename: fmt.Sprintf("Feuille_%s.xlsx", category.Name), Data: data}

	if s.uploader == nil {
		return sheet, nil
	}
	key := storage.ScoreSheetKey(categoryID)
	res, err := s.uploader.Upload(ctx, key, storage.XLSXContentType, bytes.NewReader(data))
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive score sheet", slog.Int("category_id", categoryID), slog.Any("error", err))
		return sheet, nil
	}
	sheet.URL = res.Location
	s.logger.InfoContext(ctx, "score sheet archived", slog.Int("category_id", categoryID), slog.String("key", res.Key))
	return sheet, nil
}
