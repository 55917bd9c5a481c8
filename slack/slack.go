// Package slack implements the corner of the Slack Web and RTM APIs that the
// bot needs.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Client holds the context for requests to the Slack Web API.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Token is the bot's API token.
	Token string
	// Base overrides the API base URL. If empty, the public API is used.
	Base string
}

// User is a Slack user as reported by users.info and users.list.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attachment is a rich message fragment for chat.postMessage.
type Attachment struct {
	Text   string  `json:"text"`
	Color  string  `json:"color,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

// Field is a short labeled value inside an attachment.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// apiurl creates a Web API URL for the given method.
func (c *Client) apiurl(method string) string {
	base := c.Base
	if base == "" {
		base = "https://slack.com/api"
	}
	return strings.TrimRight(base, "/") + "/" + method
}

// apicall performs a Web API call and decodes the response into u, which
// must embed the ok/error envelope via a Response field or be a struct with
// matching fields. Slack reports failures inside a 200 response, so the
// envelope is checked here and surfaced as an error.
func apicall[Resp any](ctx context.Context, c *Client, method string, form url.Values, u *Resp) error {
	body := strings.NewReader(form.Encode())
	req, err := http.NewRequestWithContext(ctx, "POST", c.apiurl(method), body)
	if err != nil {
		return fmt.Errorf("couldn't make request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(ctx, c, req, u)
}

// do performs a prepared request and decodes the enveloped response.
func do[Resp any](ctx context.Context, c *Client, req *http.Request, u *Resp) error {
	req.Header.Set("Authorization", "Bearer "+c.Token)
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("couldn't %s: %w", req.Method, err)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("couldn't read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed: %s (%s)", b, resp.Status)
	}
	var env struct {
		OK      bool   `json:"ok"`
		Error   string `json:"error"`
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("couldn't decode JSON response: %w", err)
	}
	if !env.OK {
		reason := env.Error
		if reason == "" {
			reason = env.Warning
		}
		if reason == "" {
			reason = "unknown error"
		}
		return fmt.Errorf("slack call failed: %s", reason)
	}
	if err := json.Unmarshal(b, u); err != nil {
		return fmt.Errorf("couldn't decode JSON response: %w", err)
	}
	return nil
}

// PostMessage sends a plain text message to a channel.
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	form := url.Values{
		"channel": {channel},
		"text":    {text},
		"as_user": {"true"},
	}
	var resp struct{}
	if err := apicall(ctx, c, "chat.postMessage", form, &resp); err != nil {
		return fmt.Errorf("couldn't post message: %w", err)
	}
	return nil
}

// PostAttachments sends a message composed of attachments to a channel.
func (c *Client) PostAttachments(ctx context.Context, channel string, as []Attachment) error {
	b, err := json.Marshal(as)
	if err != nil {
		return fmt.Errorf("couldn't encode attachments: %w", err)
	}
	form := url.Values{
		"channel":     {channel},
		"attachments": {string(b)},
		"as_user":     {"true"},
	}
	var resp struct{}
	if err := apicall(ctx, c, "chat.postMessage", form, &resp); err != nil {
		return fmt.Errorf("couldn't post attachments: %w", err)
	}
	return nil
}

// UploadFile uploads file bytes to one or more channels and returns a
// permalink to the uploaded file when Slack provides one.
func (c *Client) UploadFile(ctx context.Context, channels []string, filename, comment string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"channels":        strings.Join(channels, ","),
		"filename":        filename,
		"initial_comment": comment,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("couldn't write form field: %w", err)
		}
	}
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("couldn't create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("couldn't write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("couldn't finish form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.apiurl("files.upload"), &buf)
	if err != nil {
		return "", fmt.Errorf("couldn't make request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	var resp struct {
		File struct {
			Permalink       string `json:"permalink"`
			PermalinkPublic string `json:"permalink_public"`
		} `json:"file"`
	}
	if err := do(ctx, c, req, &resp); err != nil {
		return "", fmt.Errorf("couldn't upload file: %w", err)
	}
	link := resp.File.PermalinkPublic
	if link == "" {
		link = resp.File.Permalink
	}
	return link, nil
}

// UserInfo resolves a user ID to the user's profile.
func (c *Client) UserInfo(ctx context.Context, id string) (*User, error) {
	form := url.Values{"user": {id}}
	var resp struct {
		User User `json:"user"`
	}
	if err := apicall(ctx, c, "users.info", form, &resp); err != nil {
		return nil, fmt.Errorf("couldn't get user info: %w", err)
	}
	return &resp.User, nil
}

// Users lists every user on the workspace.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var resp struct {
		Members []User `json:"members"`
	}
	if err := apicall(ctx, c, "users.list", url.Values{}, &resp); err != nil {
		return nil, fmt.Errorf("couldn't list users: %w", err)
	}
	return resp.Members, nil
}
