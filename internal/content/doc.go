// Package content converts between the editor's markup and other
// representations.
//
// FromMarkdown renders CommonMark (with the GitHub extensions) into the
// markup an editor accepts through SetContent. PlainText and Analyze work
// the other way, flattening editor markup into text and counting it.
//
//	markup, err := content.FromMarkdown([]byte("# Title\n\n**bold** text"))
//	if err != nil {
//		return err
//	}
//	_ = ed.SetContent(markup)
//	st := content.Analyze(ed.Content())
package content
