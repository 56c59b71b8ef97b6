package storage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.com/judo/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/judo/exports/category-3/score-sheet.xlsx", publicURL(base, ScoreSheetKey(3)))
	assert.Equal(t, "https://cdn.example.com/judo/a.xlsx", publicURL(base, "/a.xlsx"))
	assert.Empty(t, publicURL(nil, "a.xlsx"))
	assert.Empty(t, publicURL(base, ""))
}
