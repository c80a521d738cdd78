// Package tomldoc provides an editable TOML document model that round-trips
// comments, blank lines, key spelling and value spelling.
//
// [Parse] builds a [Document] from bytes. Every table keeps track of how it
// is rendered: as a bracketed header, as an implicit table which only exists
// to hold deeper tables, as dotted keys inside its parent, or as an inline
// table. [Document.String] serializes the tree back, reusing the original
// text of everything that was not replaced.
package tomldoc
