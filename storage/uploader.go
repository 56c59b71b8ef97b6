// Package storage archives generated files in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ScoreSheetKey is the object key of a category's exported score sheet. Each export
// overwrites the previous one.
func ScoreSheetKey(categoryID int) string {
	return fmt.Sprintf("exports/category-%d/score-sheet.xlsx", categoryID)
}
