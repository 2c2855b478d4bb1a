// Package notes implements the notes panel's storage: a Repository of
// {id, title, content, lastModified} records persisted as one JSON document
// under the key "notes" in a kv.Store, and an AutoSaver that debounces edits.
//
// Repository:
//   - Load() reads the document; structurally invalid entries are dropped
//     one by one, a corrupt document yields an empty list plus an error
//   - Create() prepends an "Untitled Note" (newest first)
//   - Save(id, title, content) trims both; an entirely empty note is refused
//     with ErrEmptyNote, an empty title becomes "Untitled Note"
//   - Delete(id) returns the id that should be selected next (first note, or 0)
//
// When writing the primary store fails, the document is written to the
// backup store under "notes_backup" and the primary error is returned.
//
// AutoSaver.Schedule records the latest edit per note and saves no sooner
// than the configured delay after the last call; repeated calls coalesce
// into one save.
package notes
