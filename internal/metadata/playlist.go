package metadata

import (
	"context"
	"fmt"

	"github.com/ytget/ytdlp/v2"
)

// FetchPlaylistItems lists the videos of a remote playlist. Durations are
// left at zero; the engine discovers them at playback time.
func FetchPlaylistItems(ctx context.Context, playlistID string) ([]VideoInfo, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist %s: %w", playlistID, err)
	}

	out := make([]VideoInfo, 0, len(items))
	for _, it := range items {
		out = append(out, VideoInfo{
			VideoID:   it.VideoID,
			Title:     it.Title,
			Thumbnail: fmt.Sprintf(thumbnailFormat, it.VideoID),
		})
	}
	return out, nil
}
