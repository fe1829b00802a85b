package plugins

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

// ErrInvalidURL is returned when a link target cannot be used.
var ErrInvalidURL = errors.New("invalid link url")

// LinkRequest is handed to the prompt when the user asks for a link. The
// prompt fills in URL and Text, or sets Cancel or Remove.
type LinkRequest struct {
	URL  string
	Text string
	// Existing is true when the caret is inside a link; URL and Text then
	// start out as that link's.
	Existing bool

	Cancel bool
	Remove bool
}

// LinkPrompt asks the user for a link. It runs synchronously.
type LinkPrompt func(req *LinkRequest)

// LinkPlugin inserts, edits and removes links. Ctrl+K.
//
// Asking for a link saves the selection, emits plugin.link.prompt with the
// *LinkRequest and then calls the configured prompt. Listeners and the
// prompt may both fill the request. The saved selection is restored
// before the link is applied.
type LinkPlugin struct {
	*plugin.Base
	prompt   LinkPrompt
	saved    dom.Range
	hasSaved bool
}

// Link returns the link class. prompt may be nil when bus listeners answer
// plugin.link.prompt instead.
func Link(prompt LinkPrompt) plugin.Class {
	return newClass(NameLink, func(base *plugin.Base) plugin.Plugin {
		return &LinkPlugin{Base: base, prompt: prompt}
	})
}

// Init adds the button, shortcut and state sync.
func (p *LinkPlugin) Init() error {
	open := func(*dom.Event) {
		if err := p.Open(); err != nil {
			p.Logger().Debug("link failed", "error", err.Error())
		}
	}
	if _, err := p.AddButton(plugin.Button{
		Name:     command.CreateLink,
		Icon:     `<i class="ri-link"></i>`,
		Tooltip:  "Insert Link (Ctrl+K)",
		Callback: open,
	}); err != nil {
		return err
	}
	if err := p.AddShortcut("Ctrl+K", open); err != nil {
		return err
	}
	return watchSelection(p.Base, p.UpdateButtonState)
}

// UpdateButtonState marks the button active inside a link.
func (p *LinkPlugin) UpdateButtonState() {
	p.SetButtonActive(command.CreateLink, p.QueryState(command.CreateLink))
}

// Open saves the selection, asks for a link and applies the answer.
func (p *LinkPlugin) Open() error {
	p.saved, p.hasSaved = p.SaveRange()

	req := &LinkRequest{}
	if a := p.anchorAtCaret(); a != nil {
		req.Existing = true
		req.URL = dom.GetAttr(a, "href")
		req.Text = p.textOf(a)
	} else if p.hasSaved {
		p.Host().Document().Read(func() {
			req.Text = dom.RangeText(p.saved)
		})
	}

	p.EmitEvent("prompt", req)
	if p.prompt != nil {
		p.prompt(req)
	}

	switch {
	case req.Remove:
		return p.RemoveLink()
	case req.Cancel || strings.TrimSpace(req.URL) == "":
		p.restore()
		return nil
	}
	return p.InsertLink(req.URL, req.Text)
}

// InsertLink links the saved selection, or the current one when nothing
// was saved, to rawURL. A URL without a scheme gets https://. Inside an
// existing link the link is updated in place; otherwise a non-empty text
// is inserted as a new link and an empty one links the selected content.
// It emits plugin.link.inserted with the URL and text.
func (p *LinkPlugin) InsertLink(rawURL, text string) error {
	href, err := NormalizeURL(rawURL)
	if err != nil {
		return err
	}
	p.restore()

	if a := p.anchorAtCaret(); a != nil {
		if err := p.updateAnchor(a, href, text); err != nil {
			return err
		}
	} else if text != "" {
		markup := fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(text))
		if err := p.ExecCommand(command.InsertHTML, markup); err != nil {
			return err
		}
	} else if err := p.ExecCommand(command.CreateLink, href); err != nil {
		return err
	}

	p.UpdateButtonState()
	p.EmitEvent("inserted", href, text)
	return nil
}

// RemoveLink unwraps every link touching the selection and emits
// plugin.link.removed.
func (p *LinkPlugin) RemoveLink() error {
	p.restore()
	if err := p.ExecCommand(command.Unlink, ""); err != nil {
		return err
	}
	p.UpdateButtonState()
	p.EmitEvent("removed")
	return nil
}

func (p *LinkPlugin) restore() {
	if p.hasSaved {
		p.RestoreRange(p.saved)
		p.hasSaved = false
	}
}

func (p *LinkPlugin) anchorAtCaret() *html.Node {
	r, ok := p.SaveRange()
	if !ok {
		return nil
	}
	var a *html.Node
	p.Host().Document().Read(func() {
		a = dom.ClosestTag(r.StartContainer, p.Host().Editable(), "a")
	})
	return a
}

func (p *LinkPlugin) textOf(n *html.Node) string {
	var s string
	p.Host().Document().Read(func() {
		s = dom.TextContent(n)
	})
	return s
}

func (p *LinkPlugin) updateAnchor(a *html.Node, href, text string) error {
	host := p.Host()
	if err := host.Document().Write(func() error {
		dom.SetAttr(a, "href", href)
		if text != "" && text != dom.TextContent(a) {
			dom.SetTextContent(a, text)
			host.Document().Selection().SelectNodeContents(a)
		}
		return nil
	}); err != nil {
		return err
	}
	host.Emit(event.TopicChange, host.Content())
	return nil
}

var blockedSchemes = []string{"javascript", "data", "vbscript"}

// NormalizeURL trims rawURL, adds https:// when it has no scheme and
// checks that the result parses. Relative paths, fragments, mailto: and
// tel: links are kept as they are.
func NormalizeURL(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if strings.ContainsAny(s, " \t\n<>\"") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, s)
	}

	lower := strings.ToLower(s)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme+":") {
			return "", fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, scheme)
		}
	}
	switch {
	case strings.HasPrefix(s, "/"), strings.HasPrefix(s, "#"),
		strings.HasPrefix(lower, "mailto:"), strings.HasPrefix(lower, "tel:"):
	case !strings.Contains(s, "://"):
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		if u.Host == "" {
			return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, s)
		}
	case "file":
		return "", fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	return s, nil
}
