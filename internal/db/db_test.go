package db

import (
	"context"
	"database/sql"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func exerciseQueries(t testing.TB, database *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	makeTx := NewMakeTx(database)
	tx, discard, commit, err := makeTx(ctx)
	require.NoError(t, err)
	defer discard()

	run := CollectionRun{
		ID:        "run-1",
		Tag:       "proana",
		StartedAt: 1_700_000_000,
		Pages:     2,
		Filtered:  1,
		Missing:   2,
	}
	require.NoError(t, tx.CreateRun(ctx, run))

	id, err := tx.CreatePost(ctx, CreatePostParams{
		RunID:    run.ID,
		PostID:   42,
		QueryTag: "proana",
		BlogName: "first",
		PostUrl:  "https://first.tumblr.com/post/42",
		NumLikes: 3,
		Content:  sql.NullString{String: "hello", Valid: true},
	})
	require.NoError(t, err)
	for i, tag := range []string{"proana", "ed"} {
		err := tx.CreatePostTag(ctx, CreatePostTagParams{PostID: id, Idx: int64(i), Tag: tag})
		require.NoError(t, err)
	}
	require.NoError(t, commit())

	q := New(database)

	runs, err := q.GetRuns(ctx)
	require.NoError(t, err)
	require.Equal(t, []CollectionRun{run}, runs)

	all, err := q.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, int64(42), all[0].PostID)
	require.Equal(t, "hello", all[0].Content.String)

	byTag, err := q.GetPostsByQueryTag(ctx, "thinspo")
	require.NoError(t, err)
	require.Len(t, byTag, 0)

	tags, err := q.GetPostTags(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"proana", "ed"}, tags)
}

func TestSqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tagaudit.db")
	database, err := Config{File: path}.OpenDB()
	require.NoError(t, err)
	exerciseQueries(t, database)
	require.NoError(t, database.Close())

	// reopening must not fail on the existing schema
	database, err = Config{File: path}.OpenDB()
	require.NoError(t, err)
	defer database.Close()

	runs, err := New(database).GetRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestDiscardedTx(t *testing.T) {
	database, err := Config{File: ":memory:"}.OpenDB()
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	tx, discard, _, err := NewMakeTx(database)(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateRun(ctx, CollectionRun{ID: "gone", Tag: "ed"}))
	require.NoError(t, discard())

	runs, err := New(database).GetRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 0)
}

func TestMissingDatabase(t *testing.T) {
	_, err := Config{}.OpenDB()
	require.Error(t, err)
}

func TestLibsql(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping libsql container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	sqld, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "ghcr.io/tursodatabase/libsql-server:latest",
				ExposedPorts: []string{"8080/tcp"},
				WaitingFor:   wait.ForListeningPort("8080/tcp"),
			},
		},
	)
	require.NoError(t, err)
	defer sqld.Terminate(ctx)

	endpoint, err := sqld.Endpoint(ctx, "http")
	require.NoError(t, err)

	database, err := Config{Url: endpoint}.OpenDB()
	require.NoError(t, err)
	defer database.Close()

	exerciseQueries(t, database)
}
