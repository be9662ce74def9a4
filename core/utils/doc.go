// Package utils provides the value codecs shared by the configuration tables:
// availability flags, level literals and comma-separated lists.
package utils
