// Package download streams HTTP response bodies into an owned directory
// and tracks in-flight transfers.
//
// # Registry
//
// A [Registry] maps each in-flight [Handle] to its progress and completion
// callbacks. Every insert, lookup and removal happens under one mutex, so
// transfer goroutines and cancelling callers never race. A callback only
// fires while its entry is still registered.
//
// # Tasks
//
// [Start] runs a transfer on its own goroutine and returns a [Task]:
//
//	t := download.Start(ctx, reg, onProgress, work)
//	path, err := t.Wait()
//
// [Task.Cancel] removes the entry, aborts the transfer and returns once the
// worker has exited.
//
// # Storing
//
// [Store] writes a body to a temp file inside the destination directory and
// renames it into place on success. On any error the temp file is removed.
package download
