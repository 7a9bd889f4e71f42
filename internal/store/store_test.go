package store

import (
	"context"
	"testing"
	"time"

	"tagaudit/internal/collector"
	"tagaudit/internal/db"
	"tagaudit/internal/posts"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestStore(t *testing.T) {
	database, err := db.Config{File: ":memory:"}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	store := NewStore(database)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		res, err := store.Records(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, res, 0)
	}

	proana := []posts.Record{
		{
			Tag:        "proana",
			BlogName:   "first",
			PostUrl:    "https://first.tumblr.com/post/1",
			NumLikes:   4,
			NumReplies: 1,
			NumReblogs: 2,
			Tags:       []string{"proana", "ed", "proana"},
			Content:    ptr("some text"),
			PostId:     1,
		},
		{
			Tag:      "proana",
			BlogName: "second",
			PostUrl:  "https://second.tumblr.com/post/2",
			Tags:     []string{"video"},
			PostId:   2,
		},
	}
	edtwt := []posts.Record{
		{
			Tag:      "edtwt",
			BlogName: "third",
			PostUrl:  "https://third.tumblr.com/post/3",
			Tags:     []string{"edtwt", "ed"},
			Content:  ptr(""),
			PostId:   3,
		},
	}

	err = store.SaveRun(ctx, collector.Result{
		RunId:     "run-1",
		Tag:       "proana",
		StartedAt: 100,
		Records:   proana,
		Pages:     1,
	})
	require.NoError(t, err)
	err = store.SaveRun(ctx, collector.Result{
		RunId:     "run-2",
		Tag:       "edtwt",
		StartedAt: 200,
		Records:   edtwt,
		Pages:     1,
		Skipped:   3,
	})
	require.NoError(t, err)

	{
		res, err := store.Records(ctx, "proana")
		require.NoError(t, err)
		if diff := cmp.Diff(proana, res); diff != "" {
			t.Fatal(diff)
		}
	}
	{
		res, err := store.Records(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(append(append([]posts.Record{}, proana...), edtwt...), res); diff != "" {
			t.Fatal(diff)
		}
	}
	{
		res, err := store.Records(ctx, "edtwt", "proana")
		require.NoError(t, err)
		require.Len(t, res, 3)
		require.Equal(t, "edtwt", res[0].Tag)
	}
	{
		runs, err := store.Runs(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		require.Equal(t, "run-1", runs[0].ID)
		require.Equal(t, int64(3), runs[1].Skipped)
	}
}

func TestRecordsKeepLatestRun(t *testing.T) {
	database, err := db.Config{File: ":memory:"}.OpenDB()
	require.NoError(t, err)
	defer database.Close()
	store := NewStore(database)

	ctx := context.Background()
	first := posts.Record{Tag: "proana", BlogName: "b", PostUrl: "u", NumLikes: 1, Tags: []string{"a", "b"}, PostId: 42}
	again := first
	again.NumLikes = 5
	again.Tags = []string{"a", "b", "c"}
	other := posts.Record{Tag: "edtwt", BlogName: "b", PostUrl: "u", Tags: []string{"a", "b"}, PostId: 42}

	require.NoError(t, store.SaveRun(ctx, collector.Result{RunId: "run-1", Tag: "proana", StartedAt: 1, Records: []posts.Record{first}}))
	require.NoError(t, store.SaveRun(ctx, collector.Result{RunId: "run-2", Tag: "proana", StartedAt: 2, Records: []posts.Record{again}}))
	require.NoError(t, store.SaveRun(ctx, collector.Result{RunId: "run-3", Tag: "edtwt", StartedAt: 3, Records: []posts.Record{other}}))

	{
		res, err := store.Records(ctx, "proana", "proana")
		require.NoError(t, err)
		if diff := cmp.Diff([]posts.Record{again}, res); diff != "" {
			t.Fatal(diff)
		}
	}
	{
		// one row per query tag, the post itself is stored under both
		res, err := store.Records(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff([]posts.Record{again, other}, res); diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestSaveRunIsAtomic(t *testing.T) {
	database, err := db.Config{File: ":memory:"}.OpenDB()
	require.NoError(t, err)
	defer database.Close()
	store := NewStore(database)

	ctx := context.Background()
	run := collector.Result{RunId: "dup", Tag: "t"}
	require.NoError(t, store.SaveRun(ctx, run))

	run.Records = []posts.Record{{Tag: "t", BlogName: "b", PostUrl: "u", PostId: 1}}
	require.Error(t, store.SaveRun(ctx, run))

	res, err := store.Records(ctx)
	require.NoError(t, err)
	require.Empty(t, res)
}
