// Package fileutil holds small filesystem helpers shared by the storage
// packages: streaming copies, atomic replace-by-rename writes, and the
// content digest used for duplicate detection.
package fileutil
