package pamgo

import (
	"github.com/hupe1980/pamgo/medoids"
)

// ErrInvalidK is returned when the requested cluster count is not
// satisfiable for the input size. Cluster accepts k in [1, N]; the
// underlying state machine itself requires [2, N].
var ErrInvalidK = medoids.ErrInvalidK
