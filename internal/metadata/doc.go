// Package metadata derives the per-file facts used to police duplicate
// attachments: byte size, content digest, and for MIDI files the track count.
package metadata
