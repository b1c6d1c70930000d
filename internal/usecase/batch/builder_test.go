package batch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juspay/yama-sub000/internal/domain"
)

func file(path string, priority domain.Priority, tokens int) domain.PrioritizedFile {
	return domain.PrioritizedFile{Path: path, Priority: priority, EstimatedTokens: tokens}
}

func TestBuildRespectsFileCap(t *testing.T) {
	var files []domain.PrioritizedFile
	for i := 0; i < 7; i++ {
		files = append(files, file(fmt.Sprintf("f%d.go", i), domain.PriorityMedium, 100))
	}

	batches := Build(files, Limits{MaxFiles: 3, MaxTokens: 100000})
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Files, 3)
	assert.Len(t, batches[1].Files, 3)
	assert.Len(t, batches[2].Files, 1)

	for i, b := range batches {
		assert.Equal(t, i, b.Index)
		assert.LessOrEqual(t, len(b.Files), 3)
	}
}

func TestBuildRespectsTokenCap(t *testing.T) {
	files := []domain.PrioritizedFile{
		file("a.go", domain.PriorityMedium, 400),
		file("b.go", domain.PriorityMedium, 400),
		file("c.go", domain.PriorityMedium, 400),
	}

	batches := Build(files, Limits{MaxFiles: 10, MaxTokens: 900})
	require.Len(t, batches, 2)
	assert.Equal(t, 800, batches[0].EstimatedTokens)
	assert.Equal(t, 400, batches[1].EstimatedTokens)

	for _, b := range batches {
		if len(b.Files) > 1 {
			assert.LessOrEqual(t, b.EstimatedTokens, 900)
		}
	}
}

func TestBuildOversizedFilePlacedAlone(t *testing.T) {
	files := []domain.PrioritizedFile{
		file("small.go", domain.PriorityMedium, 100),
		file("huge.go", domain.PriorityMedium, 5000),
		file("tail.go", domain.PriorityMedium, 100),
	}

	batches := Build(files, Limits{MaxFiles: 10, MaxTokens: 1000})
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"small.go"}, batches[0].Paths())
	assert.Equal(t, []string{"huge.go"}, batches[1].Paths())
	assert.Equal(t, []string{"tail.go"}, batches[2].Paths())
}

func TestBuildOversizedFirstFileDoesNotBlock(t *testing.T) {
	files := []domain.PrioritizedFile{
		file("huge.go", domain.PriorityMedium, 5000),
	}
	batches := Build(files, Limits{MaxFiles: 3, MaxTokens: 1000})
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Files, 1)
}

func TestBuildBatchPriorityPromotion(t *testing.T) {
	files := []domain.PrioritizedFile{
		file("auth.go", domain.PriorityHigh, 100),
		file("model.go", domain.PriorityMedium, 100),
		file("readme.md", domain.PriorityLow, 100),
	}

	batches := Build(files, Limits{MaxFiles: 3, MaxTokens: 100000})
	require.Len(t, batches, 1)
	assert.Equal(t, domain.PriorityHigh, batches[0].Priority)
}

func TestBuildEmptyInput(t *testing.T) {
	assert.Nil(t, Build(nil, Limits{MaxFiles: 3, MaxTokens: 1000}))
}

func TestTokensFromLimit(t *testing.T) {
	assert.Equal(t, 70000, TokensFromLimit(100000, 0.7))
	assert.Equal(t, 50000, TokensFromLimit(100000, 0.5))
	// Out-of-range fraction falls back to 0.7
	assert.Equal(t, 70000, TokensFromLimit(100000, 0))
	assert.Equal(t, 70000, TokensFromLimit(100000, 1.5))
}

func TestBuildScenarioTwelveFiles(t *testing.T) {
	// 12 changed files, cap of 3 per batch: 4 batches, the first holding the
	// high-priority files ordered by ascending token estimate.
	var files []domain.PrioritizedFile
	files = append(files,
		file("auth/a.go", domain.PriorityHigh, 100),
		file("auth/b.go", domain.PriorityHigh, 200),
		file("auth/c.go", domain.PriorityHigh, 300),
	)
	for i := 0; i < 9; i++ {
		files = append(files, file(fmt.Sprintf("pkg/f%d.go", i), domain.PriorityMedium, 400+i))
	}

	batches := Build(files, Limits{MaxFiles: 3, MaxTokens: 100000})
	require.Len(t, batches, 4)
	assert.Equal(t, []string{"auth/a.go", "auth/b.go", "auth/c.go"}, batches[0].Paths())
	assert.Equal(t, domain.PriorityHigh, batches[0].Priority)
	assert.Equal(t, domain.PriorityMedium, batches[1].Priority)
}
