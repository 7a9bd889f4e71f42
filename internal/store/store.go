package store

import (
	"context"
	"database/sql"
	"fmt"

	"tagaudit/internal/collector"
	"tagaudit/internal/db"
	"tagaudit/internal/posts"
)

// Store persists collection runs and reads their records back.
type Store struct {
	qry    *db.Queries
	makeTx db.MakeTx
}

func NewStore(database *sql.DB) Store {
	return Store{
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
	}
}

// SaveRun writes a run and all of its records in one transaction.
func (s Store) SaveRun(ctx context.Context, run collector.Result) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return fmt.Errorf("make tx: %w", err)
	}
	defer discard()

	err = tx.CreateRun(ctx, db.CollectionRun{
		ID:        run.RunId,
		Tag:       run.Tag,
		StartedAt: run.StartedAt,
		Pages:     int64(run.Pages),
		Filtered:  int64(run.Filtered),
		Skipped:   int64(run.Skipped),
		Missing:   int64(run.Missing),
	})
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	for _, r := range run.Records {
		content := sql.NullString{}
		if r.Content != nil {
			content = sql.NullString{String: *r.Content, Valid: true}
		}
		id, err := tx.CreatePost(ctx, db.CreatePostParams{
			RunID:      run.RunId,
			PostID:     r.PostId,
			QueryTag:   r.Tag,
			BlogName:   r.BlogName,
			PostUrl:    r.PostUrl,
			NumLikes:   r.NumLikes,
			NumReplies: r.NumReplies,
			NumReblogs: r.NumReblogs,
			Content:    content,
		})
		if err != nil {
			return fmt.Errorf("create post %d: %w", r.PostId, err)
		}
		for i, tag := range r.Tags {
			err = tx.CreatePostTag(ctx, db.CreatePostTagParams{
				PostID: id,
				Idx:    int64(i),
				Tag:    tag,
			})
			if err != nil {
				return fmt.Errorf("create tag of post %d: %w", r.PostId, err)
			}
		}
	}

	return commit()
}

// Records loads the records collected for the given query tags, or every
// record when no tag is given, in the order they were saved. A post that
// several runs saved under the same query tag is returned once, as the
// latest run saved it.
func (s Store) Records(ctx context.Context, queryTags ...string) ([]posts.Record, error) {
	var rows []db.Post
	if len(queryTags) == 0 {
		var err error
		rows, err = s.qry.GetPosts(ctx)
		if err != nil {
			return nil, err
		}
	}
	seen := map[string]struct{}{}
	for _, tag := range queryTags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tagRows, err := s.qry.GetPostsByQueryTag(ctx, tag)
		if err != nil {
			return nil, err
		}
		rows = append(rows, tagRows...)
	}

	records := make([]posts.Record, len(rows))
	for i, row := range rows {
		tags, err := s.qry.GetPostTags(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		records[i] = posts.Record{
			Tag:        row.QueryTag,
			BlogName:   row.BlogName,
			PostUrl:    row.PostUrl,
			NumLikes:   row.NumLikes,
			NumReplies: row.NumReplies,
			NumReblogs: row.NumReblogs,
			Tags:       tags,
			PostId:     row.PostID,
		}
		if row.Content.Valid {
			content := row.Content.String
			records[i].Content = &content
		}
	}
	return records, nil
}

func (s Store) Runs(ctx context.Context) ([]db.CollectionRun, error) {
	return s.qry.GetRuns(ctx)
}
