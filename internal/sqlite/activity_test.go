package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	entry1 := &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeProjectCreated,
		Summary:      "Created project",
		CreatedAt:    base,
	}
	entry2 := &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeMessageSent,
		Summary:      "Sent message",
		Details:      `{"length":5}`,
		CreatedAt:    base.Add(time.Second),
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)
	require.NotEqual(t, entry1.ID, entry2.ID)

	entries, err := repo.List(ctx, activity.ListActivityOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, activity.TypeMessageSent, entries[0].ActivityType)
	require.Equal(t, `{"length":5}`, entries[0].Details)
	require.Equal(t, activity.TypeProjectCreated, entries[1].ActivityType)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ProjectID: "p1", ActivityType: activity.TypeCodeGenerated, Summary: "a"}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ProjectID: "p1", ActivityType: activity.TypeFileUpdated, Summary: "b"}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ProjectID: "p2", ActivityType: activity.TypeCodeGenerated, Summary: "c"}))

	activityType := activity.TypeCodeGenerated
	entries, err := repo.List(ctx, activity.ListActivityOptions{ProjectID: "p1", ActivityType: &activityType})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Summary)

	entries, err = repo.List(ctx, activity.ListActivityOptions{ActivityType: &activityType})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = repo.List(ctx, activity.ListActivityOptions{ProjectID: "p3"})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestActivityRepository_LimitOffset(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, summary := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
			ProjectID:    "p1",
			ActivityType: activity.TypeMessageSent,
			Summary:      summary,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.List(ctx, activity.ListActivityOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "three", entries[0].Summary)
	require.Equal(t, "two", entries[1].Summary)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "one", entries[0].Summary)
}
