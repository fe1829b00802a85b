// Package event provides the editor's internal publish/subscribe bus.
//
// An Emitter maps topic names to ordered handler lists. Emission is
// synchronous and works on a copy of the handler list taken when Emit is
// called, so a handler may subscribe or unsubscribe while an emission is in
// progress without affecting the pass that is already running:
//
//   - a handler added during Emit is not called by that Emit
//   - a handler removed during Emit is still called if it was captured
//
// Handler failures are isolated. A returned error or a panic is logged,
// counted and reported to the optional error hook, and delivery continues
// with the next handler.
//
// Go functions are not comparable, so On and Once return a Subscription
// token; Off takes the token back.
//
// # Topics
//
// Editor topics use the "editor." prefix (see the Topic constants).
// Plugin notifications use "plugin.<name>.<event>", built with PluginTopic.
package event
