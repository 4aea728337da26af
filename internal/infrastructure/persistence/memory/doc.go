// Package memory implements every domain repository in process memory.
//
// State lives for the lifetime of the process. Each repository guards its maps
// with its own RWMutex and hands out copies, so callers never share internal
// slices with the store. Multi-step consistency across repositories is the job
// of the application layer's per-user locks.
package memory
