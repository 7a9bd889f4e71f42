package posts

// post types that carry an html body the normalizer extracts text from
const (
	TYPE_TEXT  = "text"
	TYPE_PHOTO = "photo"
)

// note types counted by the normalizer
const (
	NOTE_REPLY  = "reply"
	NOTE_REBLOG = "reblog"
)

type Note struct {
	Type      string `json:"type"`
	BlogName  string `json:"blog_name,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// RawPost is a post object as the API returns it. Required fields are
// pointers so that a missing field can be told apart from a zero value.
type RawPost struct {
	Id        int64  `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Body      string `json:"body,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Notes     []Note `json:"notes,omitempty"`

	BlogName  *string   `json:"blog_name"`
	PostUrl   *string   `json:"post_url"`
	NoteCount *int64    `json:"note_count"`
	Tags      *[]string `json:"tags"`
	Type      *string   `json:"type"`

	RebloggedFromId   string `json:"reblogged_from_id,omitempty"`
	RebloggedFromName string `json:"reblogged_from_name,omitempty"`
	RebloggedRootName string `json:"reblogged_root_name,omitempty"`
}

// IsReblog reports whether the post carries a reblog-origin marker.
func (p RawPost) IsReblog() bool {
	return p.RebloggedFromId != "" || p.RebloggedFromName != ""
}

// Filter decides whether a raw post takes part in normalization.
type Filter func(post RawPost) bool

// ReblogsOnly keeps only posts that were reblogged from another blog.
func ReblogsOnly(post RawPost) bool {
	return post.IsReblog()
}

// AllPosts keeps every post.
func AllPosts(RawPost) bool {
	return true
}
