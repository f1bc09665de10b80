package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abelbrown/dashboard/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDefaultReturnsFullSet(t *testing.T) {
	a := New(0, 0)
	got, err := a.FetchDefault(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "social_1", got[0].ID)

	// Callers cannot mutate the mock set through the result.
	got[0].Hashtags[0] = "changed"
	again, _ := a.FetchDefault(context.Background(), "")
	assert.Equal(t, "TechConf2024", again[0].Hashtags[0])
}

func TestFetchDefaultByHashtag(t *testing.T) {
	got, err := New(0, 0).FetchDefault(context.Background(), "nasa")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "spacefan_official", got[0].Username)
}

func TestSearchMatchesContentUsernameAndTags(t *testing.T) {
	a := New(0, 0)
	ctx := context.Background()

	byContent, err := a.Search(ctx, "SOLAR POWER")
	require.NoError(t, err)
	require.Len(t, byContent, 1)
	assert.Equal(t, "social_3", byContent[0].ID)

	byUser, err := a.Search(ctx, "movie_insider")
	require.NoError(t, err)
	require.Len(t, byUser, 1)

	byTag, err := a.Search(ctx, "innovation")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "social_1", byTag[0].ID)

	none, err := a.Search(ctx, "zzz-no-match")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchBlankQueryReturnsImmediately(t *testing.T) {
	a := New(time.Hour, time.Hour)
	start := time.Now()
	got, err := a.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDelayHonoursCancellation(t *testing.T) {
	a := New(time.Hour, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := a.FetchDefault(ctx, "")
	require.Error(t, err)
	assert.True(t, sources.IsUpstream(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
