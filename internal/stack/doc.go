// Package stack implements the state transitions of a namespace's task
// stack: claiming entries for a run, reconciling them afterwards and popping
// entries on request.
//
// Claiming is the only cross-process coordination. The caller must persist
// the stack returned by MarkTasksToRun before starting any task, so another
// invocation reading the file sees the claimed entries as Running. Two
// invocations that both read before either writes can still claim the same
// entry; no lock file guards against that.
package stack
