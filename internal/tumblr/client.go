package tumblr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"tagaudit/internal/components/assert"
	"tagaudit/internal/components/telemetry"
	"tagaudit/internal/posts"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_tagged     = "client.tagged"
	report_client_blog_posts = "client.blog-posts"
)

const DefaultBaseUrl = "https://api.tumblr.com"

// APIError is returned when the API answers with a non-success status.
type APIError struct {
	Endpoint string
	Status   int
	Msg      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tumblr: %s: %d %s", e.Endpoint, e.Status, e.Msg)
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// ApiKey is the OAuth consumer key, it is sent as the api_key parameter.
	ApiKey           string
	CloudflareBypass bool
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
	// MessageOutput receives full request/response dumps when set.
	MessageOutput telemetry.MessageOutput
}

// Client talks to the public endpoints of the Tumblr v2 API.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	tel telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.ApiKey)

	tel = telemetry.NewScopedAPI("tumblr", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", "tagaudit/1.0")
	httpClient.SetHeader("accept", "application/json")
	httpClient.SetQueryParam("api_key", opts.ApiKey)
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, tel, opts.MessageOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    httpClient,
		tel:     tel,
	}, nil
}

// the error body's response field has no fixed shape
type failure = envelope[json.RawMessage]

func checkEnvelope(endpoint string, res *resty.Response, ok meta, failed failure) error {
	if res.IsError() {
		msg := failed.Meta.Msg
		if msg == "" {
			msg = res.Status()
		}
		return &APIError{Endpoint: endpoint, Status: res.StatusCode(), Msg: msg}
	}
	if ok.Status != 0 && ok.Status != 200 {
		return &APIError{Endpoint: endpoint, Status: ok.Status, Msg: ok.Msg}
	}
	return nil
}

// Tagged fetches the posts tagged with `tag` published before the unix
// timestamp `before` (0 for the newest posts).
func (c *Client) Tagged(ctx context.Context, tag string, before int64) (TaggedPage, error) {
	c.tel.ReportDebug(report_client_tagged, tag, before)

	req := c.Http.R().
		SetContext(ctx).
		SetQueryParam("tag", tag)
	if before > 0 {
		req.SetQueryParam("before", strconv.FormatInt(before, 10))
	}

	var body envelope[[]PostSummary]
	var failed failure
	res, err := req.
		SetResult(&body).
		SetError(&failed).
		Get("/v2/tagged")
	if err != nil {
		err = telemetry.RedactError(err)
		c.tel.ReportBroken(
			report_client_tagged,
			fmt.Errorf("fetch: %w", err),
			tag,
		)
		return TaggedPage{}, err
	}
	err = checkEnvelope("tagged", res, body.Meta, failed)
	if err != nil {
		c.tel.ReportBroken(report_client_tagged, err, tag)
		return TaggedPage{}, err
	}

	if len(body.Response) == 0 {
		return TaggedPage{Status: PAGE_EMPTY}, nil
	}
	return TaggedPage{
		Status: PAGE_OK,
		Posts:  body.Response,
		Cursor: body.Response[len(body.Response)-1].Timestamp,
	}, nil
}

// BlogPosts fetches a blog's posts with their notes and reblog information.
func (c *Client) BlogPosts(ctx context.Context, r BlogPostsRequest) ([]posts.RawPost, error) {
	assert.NotEmptyStr(r.BlogName)

	c.tel.ReportDebug(report_client_blog_posts, r.BlogName, r.Tag, r.Before)

	req := c.Http.R().
		SetContext(ctx).
		SetPathParam("blog", r.BlogName).
		SetQueryParam("notes_info", "true").
		SetQueryParam("reblog_info", "true")
	if r.Id > 0 {
		req.SetQueryParam("id", strconv.FormatInt(r.Id, 10))
	}
	if r.Tag != "" {
		req.SetQueryParam("tag", r.Tag)
	}
	if r.Before > 0 {
		req.SetQueryParam("before", strconv.FormatInt(r.Before, 10))
	}
	if r.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(r.Limit))
	}

	var body envelope[blogPostsResponse]
	var failed failure
	res, err := req.
		SetResult(&body).
		SetError(&failed).
		Get("/v2/blog/{blog}/posts")
	if err != nil {
		err = telemetry.RedactError(err)
		c.tel.ReportBroken(
			report_client_blog_posts,
			fmt.Errorf("fetch: %w", err),
			r.BlogName,
		)
		return nil, err
	}
	err = checkEnvelope("blog posts", res, body.Meta, failed)
	if err != nil {
		c.tel.ReportBroken(report_client_blog_posts, err, r.BlogName)
		return nil, err
	}

	return body.Response.Posts, nil
}
