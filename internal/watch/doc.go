// Package watch rebuilds the output when the input tree changes.
//
// Filesystem events are debounced into run requests. Requests go to a queue
// with a single pending slot that one worker drains, so runs never overlap and
// a burst of changes made during a run produces exactly one follow-up run.
package watch
