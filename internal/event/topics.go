package event

import "strings"

// Editor topics.
const (
	TopicInit            = "editor.init"
	TopicChange          = "editor.change"
	TopicFocus           = "editor.focus"
	TopicBlur            = "editor.blur"
	TopicKeydown         = "editor.keydown"
	TopicKeyup           = "editor.keyup"
	TopicMouseup         = "editor.mouseup"
	TopicPaste           = "editor.paste"
	TopicSelectionChange = "editor.selectionchange"
	TopicDestroy         = "editor.destroy"
)

// Plugin notification names used with PluginTopic.
const (
	PluginEnabled  = "enabled"
	PluginDisabled = "disabled"
	PluginToggled  = "toggled"
)

// PluginTopic returns the namespaced topic "plugin.<name>.<event>".
func PluginTopic(name, event string) string {
	return "plugin." + name + "." + event
}

// IsPluginTopic reports whether topic is in the plugin namespace and returns
// the plugin name and event parts.
func IsPluginTopic(topic string) (name, event string, ok bool) {
	rest, found := strings.CutPrefix(topic, "plugin.")
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, '.')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
