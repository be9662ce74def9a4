// Package watcher reloads the enchantment tables when an operator edits
// a table file by hand, so a running server never serves stale values.
package watcher
