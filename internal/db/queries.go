package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type CollectionRun struct {
	ID        string
	Tag       string
	StartedAt int64
	Pages     int64
	Filtered  int64
	Skipped   int64
	Missing   int64
}

const createRun = `insert into collection_run (id, tag, started_at, pages, filtered, skipped, missing)
values (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRun(ctx context.Context, arg CollectionRun) error {
	_, err := q.db.ExecContext(ctx, createRun,
		arg.ID,
		arg.Tag,
		arg.StartedAt,
		arg.Pages,
		arg.Filtered,
		arg.Skipped,
		arg.Missing,
	)
	return err
}

const getRuns = `select id, tag, started_at, pages, filtered, skipped, missing
from collection_run order by started_at, id`

func (q *Queries) GetRuns(ctx context.Context) ([]CollectionRun, error) {
	rows, err := q.db.QueryContext(ctx, getRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CollectionRun
	for rows.Next() {
		var i CollectionRun
		err := rows.Scan(&i.ID, &i.Tag, &i.StartedAt, &i.Pages, &i.Filtered, &i.Skipped, &i.Missing)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type CreatePostParams struct {
	RunID      string
	PostID     int64
	QueryTag   string
	BlogName   string
	PostUrl    string
	NumLikes   int64
	NumReplies int64
	NumReblogs int64
	Content    sql.NullString
}

const createPost = `insert into post (
    run_id, post_id, query_tag, blog_name, post_url,
    num_likes, num_replies, num_reblogs, content
) values (?, ?, ?, ?, ?, ?, ?, ?, ?)
returning id`

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.RunID,
		arg.PostID,
		arg.QueryTag,
		arg.BlogName,
		arg.PostUrl,
		arg.NumLikes,
		arg.NumReplies,
		arg.NumReblogs,
		arg.Content,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

type CreatePostTagParams struct {
	PostID int64
	Idx    int64
	Tag    string
}

const createPostTag = `insert into post_tag (post_id, idx, tag) values (?, ?, ?)`

func (q *Queries) CreatePostTag(ctx context.Context, arg CreatePostTagParams) error {
	_, err := q.db.ExecContext(ctx, createPostTag, arg.PostID, arg.Idx, arg.Tag)
	return err
}

type Post struct {
	ID         int64
	RunID      string
	PostID     int64
	QueryTag   string
	BlogName   string
	PostUrl    string
	NumLikes   int64
	NumReplies int64
	NumReblogs int64
	Content    sql.NullString
}

// a post saved by several runs of the same query tag is only returned once,
// as saved by the latest run
const getPosts = `select
    id, run_id, post_id, query_tag, blog_name, post_url,
    num_likes, num_replies, num_reblogs, content
from post
where id in (select max(id) from post group by query_tag, post_id)
order by id`

func (q *Queries) GetPosts(ctx context.Context) ([]Post, error) {
	return q.queryPosts(ctx, getPosts)
}

const getPostsByQueryTag = `select
    id, run_id, post_id, query_tag, blog_name, post_url,
    num_likes, num_replies, num_reblogs, content
from post
where id in (select max(id) from post where query_tag = ? group by post_id)
order by id`

func (q *Queries) GetPostsByQueryTag(ctx context.Context, queryTag string) ([]Post, error) {
	return q.queryPosts(ctx, getPostsByQueryTag, queryTag)
}

func (q *Queries) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Post
	for rows.Next() {
		var i Post
		err := rows.Scan(
			&i.ID,
			&i.RunID,
			&i.PostID,
			&i.QueryTag,
			&i.BlogName,
			&i.PostUrl,
			&i.NumLikes,
			&i.NumReplies,
			&i.NumReblogs,
			&i.Content,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getPostTags = `select tag from post_tag where post_id = ? order by idx`

func (q *Queries) GetPostTags(ctx context.Context, postID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getPostTags, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var tag string
		err := rows.Scan(&tag)
		if err != nil {
			return nil, err
		}
		items = append(items, tag)
	}
	return items, rows.Err()
}
