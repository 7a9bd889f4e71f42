package posts

import (
	"fmt"
	"strconv"

	"tagaudit/pkg/htmlutil"
)

// MalformedPostError is returned when a raw post lacks a required field.
type MalformedPostError struct {
	PostId int64
	Field  string
}

func (e *MalformedPostError) Error() string {
	return fmt.Sprintf("malformed post %d: missing field %s", e.PostId, e.Field)
}

// Record is the flat form of a post. It is never mutated after Normalize
// returns it.
type Record struct {
	Tag      string
	BlogName string
	PostUrl  string
	// NumLikes is the post's note_count. The notes list only holds the most
	// recent notes, so it cannot be counted from there.
	NumLikes   int64
	NumReplies int64
	NumReblogs int64
	Tags       []string
	// Content is nil for post types other than text and photo.
	Content *string

	PostId int64
}

func checkRequired(post RawPost) error {
	missing := ""
	switch {
	case post.BlogName == nil:
		missing = "blog_name"
	case post.PostUrl == nil:
		missing = "post_url"
	case post.NoteCount == nil:
		missing = "note_count"
	case post.Tags == nil:
		missing = "tags"
	case post.Type == nil:
		missing = "type"
	}
	if missing != "" {
		return &MalformedPostError{PostId: post.Id, Field: missing}
	}
	return nil
}

// Normalize flattens a raw post fetched for the query tag `tag`.
func Normalize(tag string, post RawPost) (Record, error) {
	err := checkRequired(post)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		Tag:      tag,
		BlogName: *post.BlogName,
		PostUrl:  *post.PostUrl,
		NumLikes: *post.NoteCount,
		Tags:     append([]string(nil), (*post.Tags)...),
		PostId:   post.Id,
	}
	for _, n := range post.Notes {
		switch n.Type {
		case NOTE_REPLY:
			record.NumReplies++
		case NOTE_REBLOG:
			record.NumReblogs++
		}
	}

	var markup string
	switch *post.Type {
	case TYPE_TEXT:
		markup = post.Body
	case TYPE_PHOTO:
		markup = post.Caption
	default:
		return record, nil
	}
	content, err := htmlutil.TextContent(markup)
	if err != nil {
		return Record{}, fmt.Errorf("extract text of post %d: %w", post.Id, err)
	}
	record.Content = &content

	return record, nil
}

// NormalizeAll drops the posts rejected by filter and normalizes the rest in
// order. It stops at the first malformed post.
func NormalizeAll(tag string, posts []RawPost, filter Filter) ([]Record, error) {
	if filter == nil {
		filter = AllPosts
	}
	var records []Record
	for _, p := range posts {
		if !filter(p) {
			continue
		}
		record, err := Normalize(tag, p)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Distinct keeps the first record of every post id. The same post is stored
// once per query tag it was found under, but it only co-occurs once.
func Distinct(records []Record) []Record {
	seen := make(map[int64]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.PostId]; dup {
			continue
		}
		seen[r.PostId] = struct{}{}
		out = append(out, r)
	}
	return out
}

var CsvHeader = []string{
	"index",
	"tag",
	"blogName",
	"postUrl",
	"numLikes",
	"numReplies",
	"numReblogs",
	"content",
}

// Row projects the record onto CsvHeader. An absent content is an empty cell.
func (r Record) Row(index int) []string {
	content := ""
	if r.Content != nil {
		content = *r.Content
	}
	return []string{
		strconv.Itoa(index),
		r.Tag,
		r.BlogName,
		r.PostUrl,
		strconv.FormatInt(r.NumLikes, 10),
		strconv.FormatInt(r.NumReplies, 10),
		strconv.FormatInt(r.NumReblogs, 10),
		content,
	}
}
