// Package telegram drives the operator conversation over the Bot API.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/huntline/phrasehound/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Update is one long-poll event.
type Update struct {
	ID       int64     `json:"update_id"`
	Message  *Message  `json:"message"`
	Callback *Callback `json:"callback_query"`
}

// Message is an inbound chat message, or the message a callback refers to.
type Message struct {
	ID   int64  `json:"message_id"`
	Text string `json:"text"`
	Chat Chat   `json:"chat"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Callback is an inline keyboard button press.
type Callback struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

type apiResponse struct {
	OK          bool                `json:"ok"`
	Description string              `json:"description"`
	Result      jsoniter.RawMessage `json:"result"`
}

// SendOpts tweaks one outgoing message. Messages are always HTML mode.
type SendOpts struct {
	DisablePreview bool
	CancelKeyboard bool
}

// CallbackCancel is the callback payload of the inline cancel button.
const CallbackCancel = "cancel"

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

var cancelMarkup = mustMarshal(inlineKeyboard{
	InlineKeyboard: [][]inlineButton{{{Text: "Отмена", CallbackData: CallbackCancel}}},
})

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// ClientConfig holds Bot API connection settings.
type ClientConfig struct {
	Token       string
	BaseURL     string        // default https://api.telegram.org
	PollTimeout time.Duration // long poll wait, default 25s
}

// Client is a minimal Bot API client covering what the conversation needs:
// long polling, sending, editing and callback acknowledgement.
type Client struct {
	http        *http.Client
	baseURL     string
	token       string
	pollTimeout time.Duration
}

// NewClient creates a Bot API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is not set: %w", domain.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 25 * time.Second
	}

	return &Client{
		// long polling holds the connection open for PollTimeout, so the
		// transport deadline needs headroom on top of it
		http:        &http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		pollTimeout: cfg.PollTimeout,
	}, nil
}

// GetUpdates long-polls for the next batch of updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := url.Values{}
	params.Set("timeout", strconv.Itoa(int(c.pollTimeout/time.Second)))
	params.Set("allowed_updates", `["message","callback_query"]`)
	if offset != 0 {
		params.Set("offset", strconv.FormatInt(offset, 10))
	}

	raw, err := c.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("telegram getUpdates: decode result: %w", err)
	}

	return updates, nil
}

// SendMessage delivers an HTML-formatted message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts SendOpts) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)
	params.Set("parse_mode", "HTML")
	if opts.DisablePreview {
		params.Set("disable_web_page_preview", "true")
	}
	if opts.CancelKeyboard {
		params.Set("reply_markup", cancelMarkup)
	}

	_, err := c.call(ctx, "sendMessage", params)
	return err
}

// EditMessageText replaces the text of an already sent message, dropping any
// inline keyboard it carried.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	params.Set("text", text)
	params.Set("parse_mode", "HTML")

	_, err := c.call(ctx, "editMessageText", params)
	return err
}

// AnswerCallback acknowledges a button press so the client stops spinning.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	params := url.Values{}
	params.Set("callback_query_id", callbackID)

	_, err := c.call(ctx, "answerCallbackQuery", params)
	return err
}

func (c *Client) call(ctx context.Context, method string, params url.Values) (jsoniter.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/bot"+c.token+"/"+method,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: read response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("telegram %s: %s", method, api.Description)
	}

	return api.Result, nil
}
