// Package filestore reads and edits the plain-text key=value files of a
// configuration directory.
//
// Files are UTF-8 text. Blank lines and lines starting with '#' are ignored,
// the first '=' separates key from value and both sides are trimmed.
//
// Edits preserve the operator's formatting: AppendEntry only appends,
// UpsertEntry and RemoveEntry rewrite the affected line and keep every other
// line (comments included) byte-for-byte. Whole-file rewrites are buffered in
// full and renamed over the target, so a failed write never leaves a
// truncated file behind.
//
// The store works on an afero.Fs so tests can run against an in-memory
// filesystem.
package filestore
