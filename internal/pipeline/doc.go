// Package pipeline runs the build stages of one pipeline run.
//
// The Orchestrator fans every stage out on its own goroutine and joins on all
// of them. A failing stage never cancels its siblings and artifacts written by
// successful stages are kept; the RunResult reports every stage outcome and
// RunResult.Err aggregates the failures.
package pipeline
