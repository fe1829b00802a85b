package plugins

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/plugin"
)

// ErrUnsupportedVideo is returned for a URL no provider can embed.
var ErrUnsupportedVideo = errors.New("unsupported video url")

// Video providers.
const (
	ProviderYouTube     = "youtube"
	ProviderVimeo       = "vimeo"
	ProviderDailymotion = "dailymotion"
	ProviderFile        = "video"
)

// VideoEmbed is a video URL resolved to something the editor can embed.
type VideoEmbed struct {
	Provider string
	Src      string
}

var videoProviders = []struct {
	provider string
	re       *regexp.Regexp
	embed    string
}{
	{ProviderYouTube, regexp.MustCompile(`(?i)(?:youtu\.be/|youtube\.com/(?:watch\?v=|embed/|v/))([A-Za-z0-9_-]{6,})`), "https://www.youtube.com/embed/%s"},
	{ProviderVimeo, regexp.MustCompile(`(?i)vimeo\.com/(?:channels/\w+/|groups/\w+/videos/)?([0-9]+)`), "https://player.vimeo.com/video/%s"},
	{ProviderDailymotion, regexp.MustCompile(`(?i)(?:dailymotion\.com/video/|dai\.ly/)([A-Za-z0-9]+)`), "https://www.dailymotion.com/embed/video/%s"},
}

var videoFile = regexp.MustCompile(`(?i)\.(?:mp4|webm|ogg)(?:\?.*)?$`)

// ParseVideo validates rawURL like a link target and resolves it to a
// provider embed. Direct .mp4, .webm and .ogg files embed as themselves.
func ParseVideo(rawURL string) (VideoEmbed, error) {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return VideoEmbed{}, err
	}
	for _, p := range videoProviders {
		if m := p.re.FindStringSubmatch(u); m != nil {
			return VideoEmbed{Provider: p.provider, Src: fmt.Sprintf(p.embed, m[1])}, nil
		}
	}
	if videoFile.MatchString(u) {
		return VideoEmbed{Provider: ProviderFile, Src: u}, nil
	}
	return VideoEmbed{}, fmt.Errorf("%w: %q", ErrUnsupportedVideo, u)
}

// Markup returns the HTML inserted for the embed.
func (v VideoEmbed) Markup() string {
	src := html.EscapeString(v.Src)
	if v.Provider == ProviderFile {
		return fmt.Sprintf(`<video src="%s" controls="" style="max-width: 100%%; display: block;"></video>`, src)
	}
	return fmt.Sprintf(`<div class="asteronote-video-wrapper"><iframe src="%s" `+
		`allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share" `+
		`allowfullscreen="" title="Embedded video"></iframe></div>`, src)
}

// VideoRequest is handed to the prompt when the user asks for a video.
type VideoRequest struct {
	URL    string
	Cancel bool
}

// VideoPrompt asks the user for a video URL. It runs synchronously.
type VideoPrompt func(req *VideoRequest)

// VideoPlugin embeds videos from common providers.
//
// Open saves the selection, emits plugin.video.prompt with the
// *VideoRequest and calls the configured prompt, then restores the
// selection and inserts the embed there.
type VideoPlugin struct {
	*plugin.Base
	prompt   VideoPrompt
	saved    dom.Range
	hasSaved bool
}

// Video returns the video class. prompt may be nil when bus listeners
// answer plugin.video.prompt instead.
func Video(prompt VideoPrompt) plugin.Class {
	return newClass(NameVideo, func(base *plugin.Base) plugin.Plugin {
		return &VideoPlugin{Base: base, prompt: prompt}
	})
}

// Init adds the button.
func (p *VideoPlugin) Init() error {
	open := func(*dom.Event) {
		if err := p.Open(); err != nil {
			p.Logger().Debug("video failed", "error", err.Error())
		}
	}
	_, err := p.AddButton(plugin.Button{
		Name:      "video",
		Icon:      `<i class="ri-video-add-line"></i>`,
		Tooltip:   "Insert Video",
		ClassName: "asteronote-btn-video",
		Callback:  open,
	})
	return err
}

// Open asks for a video URL and inserts the answer at the saved
// selection.
func (p *VideoPlugin) Open() error {
	p.saved, p.hasSaved = p.SaveRange()

	req := &VideoRequest{}
	p.EmitEvent("prompt", req)
	if p.prompt != nil {
		p.prompt(req)
	}
	if req.Cancel || strings.TrimSpace(req.URL) == "" {
		p.restore()
		return nil
	}
	return p.InsertVideo(req.URL)
}

// InsertVideo embeds rawURL at the saved selection, or the current one
// when nothing was saved, and emits plugin.video.inserted with the URL and
// provider. Nothing is inserted when the URL is rejected.
func (p *VideoPlugin) InsertVideo(rawURL string) error {
	p.restore()
	v, err := ParseVideo(rawURL)
	if err != nil {
		return err
	}
	if err := p.ExecCommand(command.InsertHTML, v.Markup()); err != nil {
		return err
	}
	p.EmitEvent("inserted", strings.TrimSpace(rawURL), v.Provider)
	return nil
}

func (p *VideoPlugin) restore() {
	if p.hasSaved {
		p.RestoreRange(p.saved)
		p.hasSaved = false
	}
}
