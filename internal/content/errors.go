package content

import "errors"

// ErrMarkdown wraps failures from the Markdown renderer.
var ErrMarkdown = errors.New("markdown conversion failed")
