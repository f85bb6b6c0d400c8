// Package attachments owns the on-disk content directory for catalog files.
//
// Each record holds at most one file per Kind, stored flat as
// "<record id><extension>". Uploads are staged into the same directory and
// committed with a rename so a rejected upload never touches stored content.
// Export copies a record's files under human-readable names for delivery and
// hands back a Bundle the caller must Close.
package attachments
