// Package watcher implements automatic policy ingestion from a drop
// directory. Policy documents (.txt or .md) placed in the watched
// directory are picked up via fsnotify, debounced to coalesce rapid
// editor writes, and submitted to the rule pipeline. The firm name is
// derived from the filename: extension stripped, underscores replaced
// with spaces.
package watcher
