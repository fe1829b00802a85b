// Package luaplugin loads editor plugins written in Lua.
//
// A script returns a table describing the plugin:
//
//	local count = 0
//	return {
//	  name = "wordcount",
//	  dependencies = { "bold" },
//	  init = function(p)
//	    p:add_button{ name = "wordcount", tooltip = "Word count", on_click = function()
//	      p:emit("counted", #p:content())
//	    end }
//	    p:add_shortcut("Ctrl+Shift+W", function() p:exec("selectAll") end)
//	    p:on("editor.change", function(html) count = count + 1 end)
//	  end,
//	  destroy = function(p) end,
//	}
//
// Each mounted instance runs in its own Lua state with only the base,
// table, string and math libraries. The handle passed to init exposes:
//
//	p.name                         instance name
//	p:add_button{name, icon, tooltip, class, on_click}
//	p:add_shortcut(combo, fn)
//	p:exec(command, value)         true, or false and a message
//	p:query_state(command)         boolean
//	p:query_value(command)         string
//	p:on(topic, fn)                bus subscription, fn gets the event args
//	p:emit(event, ...)             plugin.<name>.<event>
//	p:content()                    editable markup
//	p:set_content(html)            replaces the markup and emits editor.change
//	p:set_active(button, bool)
//	p:enable(), p:disable(), p:is_enabled()
//	p:log(message)
//
// Native events arrive as tables with type, key, ctrl, shift, alt, meta,
// text and a prevent_default function.
package luaplugin
