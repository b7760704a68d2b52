// Package post models a channel post returned by the content search provider.
package post

import (
	"strings"
	"time"
)

// Post is one published channel post. Text may live in any combination of
// title, text and caption depending on the post kind, so consumers should
// go through Body or Lead instead of the raw parts.
type Post struct {
	channelTitle string
	link         string
	title        string
	text         string
	caption      string
	views        int
	published    time.Time
}

// New assembles a Post from provider fields. Negative view counters are
// clamped to zero.
func New(channelTitle, link, title, text, caption string, views int, published time.Time) Post {
	if views < 0 {
		views = 0
	}

	return Post{
		channelTitle: channelTitle,
		link:         link,
		title:        title,
		text:         text,
		caption:      caption,
		views:        views,
		published:    published,
	}
}

// ChannelTitle returns the publishing channel's title, possibly empty.
func (p Post) ChannelTitle() string { return p.channelTitle }

// Link returns the public URL of the post, possibly empty.
func (p Post) Link() string { return p.link }

// Views returns the view counter reported by the provider.
func (p Post) Views() int { return p.views }

// Published returns the post timestamp; zero when the provider omitted it.
func (p Post) Published() time.Time { return p.published }

// Body joins the non-empty text parts (title, text, caption) with newlines.
// An empty result means the post carries no matchable text at all.
func (p Post) Body() string {
	parts := make([]string, 0, 3)
	for _, v := range []string{p.title, p.text, p.caption} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, "\n")
}

// Lead returns the first non-empty text part, used for preview cards.
func (p Post) Lead() string {
	for _, v := range []string{p.title, p.text, p.caption} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
