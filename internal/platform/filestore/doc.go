// Package filestore provides flat-file implementations of the persistence
// interfaces defined in the internal/task package: the line-oriented queue
// file, the append-only done file and the per-task log directory.
//
// None of the stores lock their files. A single runner process is assumed to
// be the only writer for the duration of a run.
package filestore
