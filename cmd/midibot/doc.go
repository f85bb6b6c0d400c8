// Package main hosts the midibot CLI.
//
// Each command resolves configuration, opens the catalog engine for the
// duration of one call, and renders the result as plain lines, a table on
// terminals, or JSON with --json. Songs are referenced by their exact
// display key ("Artist - Title (Version)"), the same string the bot's
// autocomplete offers.
package main
