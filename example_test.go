package pamgo_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/pamgo"
	"github.com/hupe1980/pamgo/distance"
	"github.com/hupe1980/pamgo/matrix"
)

func ExampleCluster() {
	points := []distance.Point{
		{X: 0, Y: 0}, {X: 0, Y: 1},
		{X: 10, Y: 0}, {X: 10, Y: 1},
	}

	m, err := matrix.FromPoints(points, nil)
	if err != nil {
		panic(err)
	}

	assignment, err := pamgo.Cluster(context.Background(), m, 2)
	if err != nil {
		panic(err)
	}

	for object := 0; object < m.Size(); object++ {
		fmt.Printf("%d\t%d\n", object, assignment.Label(object))
	}
	// Output:
	// 0	0
	// 1	0
	// 2	1
	// 3	1
}
