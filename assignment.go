package pamgo

import (
	"bufio"
	"io"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/pamgo/medoids"
)

// Assignment is the result of a clustering run: a contiguous cluster id
// per object, the medoid representing each cluster, and per-cluster
// membership bitmaps.
//
// Cluster ids are assigned by first encounter while scanning objects in
// index order, so they are stable for a given run but not portable across
// runs that discover medoids in a different order.
type Assignment struct {
	labels    []int
	medoids   []int
	members   []*roaring.Bitmap
	totalCost float32
}

func newAssignment(s *medoids.State) *Assignment {
	labels := make([]int, s.Size())
	clusterOf := map[int]int{}
	var clusterMedoids []int

	for object := 0; object < s.Size(); object++ {
		medoid := s.Nearest(object)
		id, ok := clusterOf[medoid]
		if !ok {
			id = len(clusterMedoids)
			clusterOf[medoid] = id
			clusterMedoids = append(clusterMedoids, medoid)
		}
		labels[object] = id
	}

	return assemble(labels, clusterMedoids, s.TotalCost())
}

func assemble(labels, clusterMedoids []int, totalCost float32) *Assignment {
	members := make([]*roaring.Bitmap, len(clusterMedoids))
	for id := range members {
		members[id] = roaring.New()
	}
	for object, id := range labels {
		members[id].Add(uint32(object))
	}

	return &Assignment{
		labels:    labels,
		medoids:   clusterMedoids,
		members:   members,
		totalCost: totalCost,
	}
}

// NumObjects returns the number of clustered objects.
func (a *Assignment) NumObjects() int { return len(a.labels) }

// NumClusters returns the number of clusters.
func (a *Assignment) NumClusters() int { return len(a.medoids) }

// Label returns the cluster id of object.
func (a *Assignment) Label(object int) int { return a.labels[object] }

// Labels returns a copy of the per-object cluster ids.
func (a *Assignment) Labels() []int {
	out := make([]int, len(a.labels))
	copy(out, a.labels)
	return out
}

// Medoid returns the object serving as the medoid of cluster.
func (a *Assignment) Medoid(cluster int) int { return a.medoids[cluster] }

// Medoids returns a copy of the cluster medoids indexed by cluster id.
func (a *Assignment) Medoids() []int {
	out := make([]int, len(a.medoids))
	copy(out, a.medoids)
	return out
}

// Members returns the membership bitmap of cluster. The caller must not
// mutate it.
func (a *Assignment) Members(cluster int) *roaring.Bitmap {
	return a.members[cluster]
}

// TotalCost returns the sum of object-to-medoid dissimilarities.
func (a *Assignment) TotalCost() float32 { return a.totalCost }

// WriteListing writes one "<object>\t<cluster>" line per object.
func (a *Assignment) WriteListing(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for object, id := range a.labels {
		if _, err := bw.WriteString(strconv.Itoa(object)); err != nil {
			return err
		}
		if err := bw.WriteByte('\t'); err != nil {
			return err
		}
		if _, err := bw.WriteString(strconv.Itoa(id)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
