package content

import (
	"net/url"
	"regexp"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

var (
	youtubeWatchRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)
	youtubeEmbedRe = regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`)
	vimeoRe        = regexp.MustCompile(`vimeo\.com/(\d+)`)
	vimeoPlayerRe  = regexp.MustCompile(`player\.vimeo\.com/video/(\d+)`)
)

// VideoSource - результат разбора ссылки на видео
type VideoSource struct {
	Provider string `json:"provider"`
	VideoID  string `json:"video_id,omitempty"`
	EmbedURL string `json:"embed_url"`
}

// ParseVideoURL определяет площадку видео по ссылке.
// Для прочих ссылок и файлов EmbedURL совпадает с исходной ссылкой.
func ParseVideoURL(raw string) VideoSource {
	if m := youtubeEmbedRe.FindStringSubmatch(raw); m != nil {
		return youtubeSource(m[1])
	}
	if m := youtubeWatchRe.FindStringSubmatch(raw); m != nil {
		return youtubeSource(m[1])
	}
	if m := vimeoPlayerRe.FindStringSubmatch(raw); m != nil {
		return vimeoSource(m[1])
	}
	if m := vimeoRe.FindStringSubmatch(raw); m != nil {
		return vimeoSource(m[1])
	}
	return VideoSource{Provider: entity.VideoTypeURL, EmbedURL: raw}
}

func youtubeSource(id string) VideoSource {
	return VideoSource{
		Provider: entity.VideoTypeYouTube,
		VideoID:  id,
		EmbedURL: "https://www.youtube.com/embed/" + id + "?enablejsapi=1&rel=0",
	}
}

func vimeoSource(id string) VideoSource {
	return VideoSource{
		Provider: entity.VideoTypeVimeo,
		VideoID:  id,
		EmbedURL: "https://player.vimeo.com/video/" + id,
	}
}

// DocumentViewerURL возвращает ссылку на просмотр документа через Google Docs Viewer
func DocumentViewerURL(raw string) string {
	return "https://docs.google.com/viewer?url=" + url.QueryEscape(raw) + "&embedded=true"
}
