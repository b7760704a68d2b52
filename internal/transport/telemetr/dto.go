package telemetr

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/huntline/phrasehound/internal/domain/post"
)

// envelope is the top-level search response.
type envelope struct {
	Status   string       `json:"status"`
	Error    string       `json:"error"`
	Response responseBody `json:"response"`
}

type responseBody struct {
	Items      []jsoniter.RawMessage `json:"items"`
	Count      int                   `json:"count"`
	TotalCount int                   `json:"total_count"`
}

// postItem is one search hit. The upstream is loose about field names, so
// the view counter and the link both come with fallbacks.
type postItem struct {
	Title      string      `json:"title"`
	Text       string      `json:"text"`
	Caption    string      `json:"caption"`
	Views      int         `json:"views"`
	ViewsCount int         `json:"views_count"`
	DisplayURL string      `json:"display_url"`
	URL        string      `json:"url"`
	Link       string      `json:"link"`
	Date       int64       `json:"date"`
	Channel    channelInfo `json:"channel"`
}

type channelInfo struct {
	Title string `json:"title"`
}

// decodeItem converts one wire item. Items are normally objects, but the
// upstream occasionally sends bare strings carrying only the post text;
// anything else is dropped.
func decodeItem(raw jsoniter.RawMessage) (post.Post, bool) {
	var it postItem
	if err := json.Unmarshal(raw, &it); err == nil {
		if it == (postItem{}) {
			return post.Post{}, false
		}
		return it.toDomain(), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return post.New("", "", "", s, "", 0, time.Time{}), true
	}

	return post.Post{}, false
}

func (it postItem) toDomain() post.Post {
	views := it.Views
	if views == 0 {
		views = it.ViewsCount
	}

	link := it.DisplayURL
	if link == "" {
		link = it.URL
	}
	if link == "" {
		link = it.Link
	}

	var published time.Time
	if it.Date > 0 {
		published = time.Unix(it.Date, 0).UTC()
	}

	return post.New(it.Channel.Title, link, it.Title, it.Text, it.Caption, views, published)
}
