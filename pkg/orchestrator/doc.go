// Package orchestrator resolves a whole schema: it compiles it once per
// schema pointer, prompts for each field in order on a single line reader and
// returns either every answer or the first terminating error.
package orchestrator
