package tumblr

import "tagaudit/internal/posts"

type meta struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

type envelope[T any] struct {
	Meta     meta `json:"meta"`
	Response T    `json:"response"`
}

// PostSummary is the part of a tagged post the pagination loop needs.
type PostSummary struct {
	BlogName  string `json:"blog_name"`
	Id        int64  `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

type PageStatus int

const (
	PAGE_OK PageStatus = iota
	// PAGE_EMPTY means the request succeeded but matched no posts.
	PAGE_EMPTY
)

// TaggedPage is one page of the tagged endpoint. Cursor is the timestamp of
// the oldest post of the page, pass it as `before` to get the next page.
type TaggedPage struct {
	Status PageStatus
	Posts  []PostSummary
	Cursor int64
}

type BlogPostsRequest struct {
	BlogName string
	// Id selects a single post of the blog.
	Id  int64
	Tag string
	// Before is a unix timestamp, 0 means no bound.
	Before int64
	// Limit of 0 leaves the API default.
	Limit int
}

type blogPostsResponse struct {
	Posts []posts.RawPost `json:"posts"`
}
