// Package vm is the runtime substrate of the calculator engine.
//
// This package contains:
//   - the tagged Value union (real, complex, real matrix, complex matrix, string)
//   - buffer ownership through an Allocator
//   - the operand stack in classic (four level) and big-stack modes
//   - numeric settings and the per-task Policy snapshot
//   - the single-slot Scheduler driving resumable Tasks
//   - the ErrorKind taxonomy
package vm
