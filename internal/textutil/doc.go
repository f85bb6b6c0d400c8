// Package textutil provides the text normalisation shared by catalog search
// and file export.
//
// The primary use cases are:
//   - Lower-casing and tokenising search input the same way display strings
//     are folded, so matching never diverges between the two sides
//   - Sanitizing human-readable export names for safe filesystem use
package textutil
