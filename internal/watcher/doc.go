// Package watcher removes cached derivatives when their media files go
// away.
//
// Derivatives are regenerated when a source changes, so edits need no
// help. A deleted or renamed source, however, leaves its derivatives behind
// for good. The watcher follows the media tree with fsnotify and, after a
// short debounce, asks the engine to prune the derivatives of every removed
// or renamed file. Removing a whole directory, and a periodic timer,
// trigger a full orphan sweep of the cache instead.
//
// A prune re-checks that the source is really gone, so a file replaced by
// rename keeps its derivatives.
package watcher
