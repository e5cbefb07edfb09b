package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultOEmbedURL = "https://noembed.com/embed"
	watchURLFormat   = "https://www.youtube.com/watch?v=%s"
	thumbnailFormat  = "https://img.youtube.com/vi/%s/mqdefault.jpg"

	fetchTimeout = 10 * time.Second
)

// VideoInfo describes one remote video.
type VideoInfo struct {
	VideoID   string
	Title     string
	Channel   string
	Duration  int // seconds; 0, discovered at playback time
	Thumbnail string
}

// Client fetches video metadata over the oEmbed endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a metadata client against the public endpoint.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		baseURL:    defaultOEmbedURL,
	}
}

// NewClientWith creates a metadata client against a specific endpoint.
func NewClientWith(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Error        string `json:"error"`
}

// Fetch resolves title, channel and thumbnail for a video id. Lookup is
// best-effort: on any failure the returned info falls back to generic
// values so a track can always be added.
func (c *Client) Fetch(ctx context.Context, videoID string) VideoInfo {
	info := VideoInfo{
		VideoID:   videoID,
		Title:     "YouTube video",
		Channel:   "",
		Thumbnail: fmt.Sprintf(thumbnailFormat, videoID),
	}

	u := c.baseURL + "?url=" + url.QueryEscape(fmt.Sprintf(watchURLFormat, videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return info
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return info
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return info
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error != "" {
		return info
	}
	if body.Title != "" {
		info.Title = body.Title
	}
	if body.AuthorName != "" {
		info.Channel = body.AuthorName
	}
	if body.ThumbnailURL != "" {
		info.Thumbnail = body.ThumbnailURL
	}
	return info
}
