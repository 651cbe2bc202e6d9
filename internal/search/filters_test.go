package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gocontext-qa/internal/query"
	"github.com/dshills/gocontext-qa/pkg/types"
)

func TestMergeFilters_Empty(t *testing.T) {
	assert.Nil(t, MergeFilters(nil, nil))
	assert.Nil(t, MergeFilters(&types.SearchFilters{}, []query.Filter{}))
	assert.Nil(t, MergeFilters(nil, []query.Filter{{Field: "owner", Value: "me"}}))
	assert.Nil(t, MergeFilters(nil, []query.Filter{{Field: "repo", Value: "abc"}}))
}

func TestMergeFilters_APIOnly(t *testing.T) {
	api := &types.SearchFilters{
		Language:        "rust",
		RepositoryID:    types.Uint64Ptr(7),
		FilePathPattern: "src/*",
	}

	merged := MergeFilters(api, nil)
	require.NotNil(t, merged)
	assert.Equal(t, "rust", *merged.Language)
	assert.Equal(t, uint64(7), *merged.RepositoryID)
	assert.Equal(t, "src/*", *merged.FilePathPattern)
}

func TestMergeFilters_InlineWins(t *testing.T) {
	api := &types.SearchFilters{
		Language:        "rust",
		RepositoryID:    types.Uint64Ptr(7),
		FilePathPattern: "src/*",
	}

	tests := []struct {
		name   string
		inline query.Filter
		check  func(t *testing.T, f *types.VectorFilters)
	}{
		{"language", query.Filter{Field: "language", Value: "go"}, func(t *testing.T, f *types.VectorFilters) {
			assert.Equal(t, "go", *f.Language)
		}},
		{"lang alias", query.Filter{Field: "lang", Value: "python"}, func(t *testing.T, f *types.VectorFilters) {
			assert.Equal(t, "python", *f.Language)
		}},
		{"repo", query.Filter{Field: "repo", Value: "3"}, func(t *testing.T, f *types.VectorFilters) {
			assert.Equal(t, uint64(3), *f.RepositoryID)
		}},
		{"repo_id alias", query.Filter{Field: "repo_id", Value: "4"}, func(t *testing.T, f *types.VectorFilters) {
			assert.Equal(t, uint64(4), *f.RepositoryID)
		}},
		{"repository alias", query.Filter{Field: "repository", Value: "5"}, func(t *testing.T, f *types.VectorFilters) {
			assert.Equal(t, uint64(5), *f.RepositoryID)
		}},
		{"file", query.Filter{Field: "file", Value: "*.go"}, func(t *testing.T, f *types.VectorFilters) {
			assert.Equal(t, "*.go", *f.FilePathPattern)
		}},
		{"path alias", query.Filter{Field: "path", Value: "cmd/*"}, func(t *testing.T, f *types.VectorFilters) {
			assert.Equal(t, "cmd/*", *f.FilePathPattern)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeFilters(api, []query.Filter{tt.inline})
			require.NotNil(t, merged)
			tt.check(t, merged)
		})
	}
}

func TestMergeFilters_LastInlineWins(t *testing.T) {
	merged := MergeFilters(nil, []query.Filter{
		{Field: "lang", Value: "go"},
		{Field: "language", Value: "rust"},
	})
	require.NotNil(t, merged)
	assert.Equal(t, "rust", *merged.Language)
	assert.Nil(t, merged.RepositoryID)
	assert.Nil(t, merged.FilePathPattern)
}

func TestMergeFilters_NonNumericRepoKeepsAPIValue(t *testing.T) {
	api := &types.SearchFilters{RepositoryID: types.Uint64Ptr(9)}
	merged := MergeFilters(api, []query.Filter{{Field: "repo", Value: "-1"}})
	require.NotNil(t, merged)
	assert.Equal(t, uint64(9), *merged.RepositoryID)
}

func TestMergeFilters_FieldNamesAreCaseSensitive(t *testing.T) {
	assert.Nil(t, MergeFilters(nil, []query.Filter{{Field: "Lang", Value: "go"}}))
}

func TestMergeFilters_DoesNotAliasAPI(t *testing.T) {
	repo := uint64(1)
	api := &types.SearchFilters{RepositoryID: &repo}
	merged := MergeFilters(api, nil)
	require.NotNil(t, merged)

	*merged.RepositoryID = 2
	assert.Equal(t, uint64(1), repo)
}
