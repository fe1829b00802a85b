// Package dom is a small headless document model over golang.org/x/net/html.
//
// It supplies what the editor needs from a browser host and nothing more:
// an element tree with attribute, class and style helpers, markup
// serialisation, simple selectors, bubbling event listeners, a focus model
// and a single document-wide selection.
//
// Nodes are plain *html.Node values. Package-level helpers operate on any
// node; methods on Document cover state that is document-wide (listeners,
// focus, selection).
//
// # Locking
//
// A Document is driven from one goroutine (the UI goroutine). The only other
// goroutines that touch it are deferred tasks that read content. Tree
// mutations therefore run inside Write and off-goroutine reads inside Read.
// Selection changes made inside Write are coalesced into one selectionchange
// event fired after the lock is released.
package dom
