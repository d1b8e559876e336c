// Package pamgo clusters objects around medoids (PAM) over a precomputed
// dissimilarity matrix, in parallel across worker goroutines and, through
// a pluggable collective fabric, across processes.
//
// # Basic usage
//
//	m, err := matrix.FromPoints(points, nil)
//	if err != nil { ... }
//
//	assignment, err := pamgo.Cluster(ctx, m, 3)
//	if err != nil { ... }
//
//	for object := 0; object < m.Size(); object++ {
//	    fmt.Printf("%d\t%d\n", object, assignment.Label(object))
//	}
//
// # Distributed usage
//
// Every process of a cluster runs the identical call with a connected
// fabric; the engine keeps all replicas of the clustering state in
// lockstep, so each process ends with the same assignment:
//
//	f, err := tcpfabric.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer f.Close()
//
//	assignment, err := pamgo.Cluster(ctx, m, k,
//	    pamgo.WithFabric(f),
//	    pamgo.WithThreads(4),
//	)
package pamgo
