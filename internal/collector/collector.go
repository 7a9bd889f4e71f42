package collector

import (
	"context"
	"errors"
	"fmt"

	"tagaudit/internal/components/assert"
	"tagaudit/internal/components/chrono"
	"tagaudit/internal/components/telemetry"
	"tagaudit/internal/posts"
	"tagaudit/internal/tumblr"

	"github.com/google/uuid"
)

const (
	report_collector_tagged      = "collector.tagged"
	report_collector_blog_posts  = "collector.blog-posts"
	report_collector_normalize   = "collector.normalize"
	report_collector_stuck       = "collector.stuck-cursor"
	report_collector_records     = "collector.records"
	report_collector_skipped     = "collector.skipped"
	report_collector_empty_pages = "collector.empty"
	report_collector_missing     = "collector.missing-post"
)

// API is the part of the tumblr client the collector depends on.
type API interface {
	Tagged(ctx context.Context, tag string, before int64) (tumblr.TaggedPage, error)
	BlogPosts(ctx context.Context, req tumblr.BlogPostsRequest) ([]posts.RawPost, error)
}

type Collector struct {
	api  API
	tel  telemetry.API
	time chrono.API
}

func New(api API, time chrono.API, tel telemetry.API) Collector {
	assert.NotNil(api)
	assert.NotNil(time)
	assert.NotNil(tel)

	return Collector{
		api:  api,
		time: time,
		tel:  telemetry.NewScopedAPI("collector", tel),
	}
}

type Request struct {
	Tag string
	// MaxPages of 0 pages until the API runs out of posts.
	MaxPages int
	// Filter defaults to posts.ReblogsOnly.
	Filter posts.Filter
	// Before is the starting cursor, it defaults to the current time.
	Before int64
}

type Result struct {
	RunId     string
	Tag       string
	StartedAt int64
	Records   []posts.Record
	Pages     int
	// Filtered counts posts dropped by the filter.
	Filtered int
	// Skipped counts malformed posts.
	Skipped int
	// Missing counts tagged posts the blog endpoint did not return, usually
	// deleted between the two requests.
	Missing int
	// Empty is set when the very first page had no posts.
	Empty bool
}

// Collect pages through the posts tagged with req.Tag, newest first, and
// normalizes every post that passes the filter.
func (c Collector) Collect(ctx context.Context, req Request) (Result, error) {
	assert.NotEmptyStr(req.Tag)
	assert.NonNegative(req.MaxPages)

	filter := req.Filter
	if filter == nil {
		filter = posts.ReblogsOnly
	}
	now := c.time.Now().Unix()
	cursor := req.Before
	if cursor == 0 {
		cursor = now
	}

	result := Result{
		RunId:     uuid.NewString(),
		Tag:       req.Tag,
		StartedAt: now,
	}
	seen := map[int64]struct{}{}

	for req.MaxPages == 0 || result.Pages < req.MaxPages {
		page, err := c.api.Tagged(ctx, req.Tag, cursor)
		if err != nil {
			c.tel.ReportBroken(report_collector_tagged, err, req.Tag, cursor)
			return result, fmt.Errorf("fetch tagged page of %s: %w", req.Tag, err)
		}
		if page.Status == tumblr.PAGE_EMPTY {
			if result.Pages == 0 {
				result.Empty = true
				c.tel.ReportWarning(report_collector_empty_pages, req.Tag, cursor)
			}
			break
		}
		result.Pages++

		for _, summary := range page.Posts {
			if _, dup := seen[summary.Id]; dup {
				continue
			}
			seen[summary.Id] = struct{}{}

			err := c.collectPost(ctx, req.Tag, summary, filter, &result)
			if err != nil {
				return result, err
			}
		}

		if page.Cursor <= 0 || page.Cursor >= cursor {
			c.tel.ReportWarning(report_collector_stuck, req.Tag, cursor, page.Cursor)
			break
		}
		cursor = page.Cursor
	}

	c.tel.ReportCount(report_collector_records, int64(len(result.Records)))
	c.tel.ReportCount(report_collector_skipped, int64(result.Skipped))

	return result, nil
}

func (c Collector) collectPost(ctx context.Context, tag string, summary tumblr.PostSummary, filter posts.Filter, result *Result) error {
	raw, err := c.api.BlogPosts(ctx, tumblr.BlogPostsRequest{
		BlogName: summary.BlogName,
		Id:       summary.Id,
	})
	if err != nil {
		c.tel.ReportBroken(report_collector_blog_posts, err, summary.BlogName, summary.Id)
		return fmt.Errorf("fetch post %d of %s: %w", summary.Id, summary.BlogName, err)
	}

	var post *posts.RawPost
	for i := range raw {
		if raw[i].Id == summary.Id {
			post = &raw[i]
			break
		}
	}
	if post == nil {
		c.tel.ReportWarning(report_collector_missing, summary.BlogName, summary.Id)
		result.Missing++
		return nil
	}
	if !filter(*post) {
		result.Filtered++
		return nil
	}

	record, err := posts.Normalize(tag, *post)
	var malformed *posts.MalformedPostError
	if errors.As(err, &malformed) {
		c.tel.ReportWarning(report_collector_normalize, err, summary.BlogName)
		result.Skipped++
		return nil
	}
	if err != nil {
		c.tel.ReportBroken(report_collector_normalize, err, summary.BlogName)
		return err
	}
	result.Records = append(result.Records, record)
	return nil
}
