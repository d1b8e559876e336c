// Package engine drives the PAM state machine with two-level parallelism:
// worker goroutines inside the process share one state, and processes
// agree on each mutation through fabric collectives.
//
// Every step follows the same discipline: each worker scans its shard and
// writes only its own scratch slot; a barrier; worker 0 folds the slots in
// worker order, runs the cross-process all-reduce and applies the winning
// mutation; a barrier; every worker observes the mutation and the decision
// to continue. Worker 0 is the only writer of shared state, so no locks
// are needed on the hot path.
package engine
