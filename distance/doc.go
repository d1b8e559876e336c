// Package distance provides the point types and dissimilarity metrics used
// to derive a dissimilarity matrix from raw input objects.
//
// # Supported Metrics
//
//   - MetricEuclidean: Euclidean distance (default)
//   - MetricSquaredEuclidean: squared Euclidean distance (no sqrt)
//   - MetricManhattan: L1 distance
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	fn, err := distance.Provider(distance.MetricEuclidean)
package distance
