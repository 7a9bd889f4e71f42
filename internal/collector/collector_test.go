package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"tagaudit/internal/components/chrono"
	"tagaudit/internal/components/telemetry"
	"tagaudit/internal/posts"
	"tagaudit/internal/tumblr"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

type fakePost struct {
	summary tumblr.PostSummary
	raw     posts.RawPost
}

// fakeAPI serves posts newest first in pages of pageSize.
type fakeAPI struct {
	pageSize int
	posts    []fakePost

	taggedCalls []int64
	taggedErr   error
	blogErr     error
	// deleted posts show up in tagged pages but not on their blog
	deleted map[int64]bool
}

func (f *fakeAPI) Tagged(ctx context.Context, tag string, before int64) (tumblr.TaggedPage, error) {
	f.taggedCalls = append(f.taggedCalls, before)
	if f.taggedErr != nil {
		return tumblr.TaggedPage{}, f.taggedErr
	}

	var page []tumblr.PostSummary
	for _, p := range f.posts {
		if p.summary.Timestamp >= before {
			continue
		}
		page = append(page, p.summary)
		if len(page) == f.pageSize {
			break
		}
	}
	if len(page) == 0 {
		return tumblr.TaggedPage{Status: tumblr.PAGE_EMPTY}, nil
	}
	return tumblr.TaggedPage{
		Status: tumblr.PAGE_OK,
		Posts:  page,
		Cursor: page[len(page)-1].Timestamp,
	}, nil
}

func (f *fakeAPI) BlogPosts(ctx context.Context, req tumblr.BlogPostsRequest) ([]posts.RawPost, error) {
	if f.blogErr != nil {
		return nil, f.blogErr
	}
	if req.Id == 0 {
		return nil, errors.New("expected a post id")
	}
	if f.deleted[req.Id] {
		return nil, nil
	}
	for _, p := range f.posts {
		if p.summary.BlogName == req.BlogName && p.summary.Id == req.Id {
			return []posts.RawPost{p.raw}, nil
		}
	}
	return nil, nil
}

func newPost(id int64, blog string, timestamp int64, reblog bool, tags ...string) fakePost {
	raw := posts.RawPost{
		Id:        id,
		Timestamp: timestamp,
		BlogName:  ptr(blog),
		PostUrl:   ptr("https://" + blog + ".tumblr.com/post"),
		NoteCount: ptr(int64(0)),
		Tags:      ptr(tags),
		Type:      ptr(posts.TYPE_TEXT),
		Body:      "<p>body</p>",
	}
	if reblog {
		raw.RebloggedFromName = "origin"
	}
	return fakePost{
		summary: tumblr.PostSummary{BlogName: blog, Id: id, Timestamp: timestamp},
		raw:     raw,
	}
}

var now = time.Unix(2000, 0)

func newCollector(api API) (Collector, *telemetry.Recorder) {
	tel := &telemetry.Recorder{}
	return New(api, chrono.FixedImpl{At: now}, tel), tel
}

func TestCollectPaginates(t *testing.T) {
	api := &fakeAPI{
		pageSize: 2,
		posts: []fakePost{
			newPost(5, "e", 1500, true, "a", "b"),
			newPost(4, "d", 1400, true, "b"),
			newPost(3, "c", 1300, false, "c"),
			newPost(2, "b", 1200, true, "a"),
			newPost(1, "a", 1100, true, "d"),
		},
	}
	c, _ := newCollector(api)

	result, err := c.Collect(context.Background(), Request{Tag: "proana"})
	require.NoError(t, err)

	require.Equal(t, []int64{2000, 1400, 1200, 1100}, api.taggedCalls)
	require.Equal(t, 3, result.Pages)
	require.Equal(t, 1, result.Filtered)
	require.False(t, result.Empty)
	require.NotEmpty(t, result.RunId)
	require.Equal(t, int64(2000), result.StartedAt)

	var ids []int64
	for _, r := range result.Records {
		ids = append(ids, r.PostId)
		require.Equal(t, "proana", r.Tag)
	}
	require.Equal(t, []int64{5, 4, 2, 1}, ids)
}

func TestCollectAllPosts(t *testing.T) {
	api := &fakeAPI{
		pageSize: 10,
		posts: []fakePost{
			newPost(2, "b", 1200, false, "a"),
			newPost(1, "a", 1100, true, "b"),
		},
	}
	c, _ := newCollector(api)

	result, err := c.Collect(context.Background(), Request{Tag: "edtwt", Filter: posts.AllPosts})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Zero(t, result.Filtered)
}

func TestCollectMaxPages(t *testing.T) {
	api := &fakeAPI{
		pageSize: 1,
		posts: []fakePost{
			newPost(3, "c", 1300, true),
			newPost(2, "b", 1200, true),
			newPost(1, "a", 1100, true),
		},
	}
	c, _ := newCollector(api)

	result, err := c.Collect(context.Background(), Request{Tag: "t", MaxPages: 2})
	require.NoError(t, err)
	require.Equal(t, 2, result.Pages)
	require.Len(t, result.Records, 2)
	require.Len(t, api.taggedCalls, 2)
}

func TestCollectEmpty(t *testing.T) {
	c, tel := newCollector(&fakeAPI{pageSize: 5})

	result, err := c.Collect(context.Background(), Request{Tag: "nothing", Before: 999})
	require.NoError(t, err)
	require.True(t, result.Empty)
	require.Zero(t, result.Pages)
	require.Empty(t, result.Records)
	require.Len(t, tel.Reports("warning"), 1)
}

func TestCollectSkipsMalformed(t *testing.T) {
	bad := newPost(2, "b", 1200, true, "a")
	bad.raw.PostUrl = nil
	api := &fakeAPI{
		pageSize: 10,
		posts: []fakePost{
			bad,
			newPost(1, "a", 1100, true, "b"),
		},
	}
	c, tel := newCollector(api)

	result, err := c.Collect(context.Background(), Request{Tag: "t"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Skipped)
	require.Len(t, result.Records, 1)
	require.NotEmpty(t, tel.Reports("warning"))
}

func TestCollectSameTimestamp(t *testing.T) {
	api := &fakeAPI{
		pageSize: 10,
		posts: []fakePost{
			newPost(2, "a", 1100, true, "x"),
			newPost(1, "a", 1100, true, "y"),
		},
	}
	c, tel := newCollector(api)

	result, err := c.Collect(context.Background(), Request{Tag: "t"})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Equal(t, int64(2), result.Records[0].PostId)
	require.Equal(t, int64(1), result.Records[1].PostId)
	require.Zero(t, result.Missing)
	require.Empty(t, tel.Reports("warning"))
}

func TestCollectReportsMissingPosts(t *testing.T) {
	api := &fakeAPI{
		pageSize: 10,
		posts: []fakePost{
			newPost(2, "b", 1200, true, "a"),
			newPost(1, "a", 1100, true, "b"),
		},
		deleted: map[int64]bool{2: true},
	}
	c, tel := newCollector(api)

	result, err := c.Collect(context.Background(), Request{Tag: "t"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Missing)
	require.Len(t, result.Records, 1)

	warnings := tel.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, "collector: "+report_collector_missing, warnings[0].Id)
	require.Equal(t, []any{"b", int64(2)}, warnings[0].Params)
}

type stuckAPI struct {
	fakeAPI
}

func (s *stuckAPI) Tagged(ctx context.Context, tag string, before int64) (tumblr.TaggedPage, error) {
	s.taggedCalls = append(s.taggedCalls, before)
	summary := s.posts[0].summary
	return tumblr.TaggedPage{
		Status: tumblr.PAGE_OK,
		Posts:  []tumblr.PostSummary{summary},
		Cursor: before,
	}, nil
}

func TestCollectStopsOnStuckCursor(t *testing.T) {
	api := &stuckAPI{fakeAPI: fakeAPI{posts: []fakePost{newPost(1, "a", 1100, true)}}}
	c, _ := newCollector(api)

	result, err := c.Collect(context.Background(), Request{Tag: "t"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Pages)
	require.Len(t, api.taggedCalls, 1)
	require.Len(t, result.Records, 1)
}

func TestCollectFetchErrors(t *testing.T) {
	failure := errors.New("connection reset")

	c, tel := newCollector(&fakeAPI{taggedErr: failure})
	_, err := c.Collect(context.Background(), Request{Tag: "t"})
	require.ErrorIs(t, err, failure)
	require.NotEmpty(t, tel.Reports("broken"))

	c, _ = newCollector(&fakeAPI{
		pageSize: 1,
		posts:    []fakePost{newPost(1, "a", 1100, true)},
		blogErr:  failure,
	})
	_, err = c.Collect(context.Background(), Request{Tag: "t"})
	require.ErrorIs(t, err, failure)
}
