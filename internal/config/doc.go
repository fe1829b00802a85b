// Package config loads editor configuration files.
//
// A configuration file is TOML or YAML, chosen by extension:
//
//	[editor]
//	height = 400
//	toolbar = ["heading", "separator", "bold", "italic", "link"]
//	placeholder = "Write here"
//	shortcuts = true
//
//	[history]
//	enabled = true
//	size = 50
//
//	[log]
//	level = "debug"
//	format = "console"
//
//	[plugins]
//	scripts = ["plugins/wordcount.lua"]
//	disabled = ["highlight"]
//
// Keys missing from the file keep their defaults. Watch reloads the file
// whenever it changes on disk.
package config
