// Package resource resolves prototype reference fields to loadable
// resources.
//
// A reference field in a document is a plain string holding a path
// relative to the containing document. The loader resolves that path and
// hands it to a Loader, which returns a Handle immediately; the
// referenced bytes arrive asynchronously and callers that need them wait
// on the handle. Records are considered complete once they hold a valid
// handle, not once the bytes are in memory.
package resource
