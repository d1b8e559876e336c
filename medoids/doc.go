// Package medoids implements the Partitioning Around Medoids state machine.
//
// A State evolves through three phases: Initializing (the single central
// object is chosen), Building (medoids are added greedily until k are
// present) and Swapping (medoids are replaced while a replacement strictly
// lowers the total dissimilarity).
//
// The package is deliberately free of any concurrency or communication
// concerns: every participant of a distributed run owns an identical State
// and applies the identical mutation sequence. The engine package drives
// the phases; the fabric package agrees on the mutations.
package medoids
