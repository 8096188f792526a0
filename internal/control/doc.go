// SPDX-License-Identifier: EPL-2.0

// Package control exposes an engine through a small text protocol.
//
// A command is a line of space separated words; double quotes group words
// and accept Go escapes. Every command is answered with "OK", "OK <value>"
// or "ERR <reason>":
//
//	bgm play "music/field 1.ogg" 90 100
//	OK
//	bgm pos
//	OK 3.52
//	lch volume 0 50
//	OK 50
//	ch play 2 rain.ogg 80 100 12.5 true
//	OK
//	lowpass 800
//	OK 1
//	filter bgm 1
//	OK
//
// Pooled play takes the slot, file, volume, pitch, start offset and whether
// to fade in when starting past zero.
//
// Commands from the console and the unix socket go through one Dispatcher
// goroutine, which parks while the application is halted.
package control
