package medoids

import "math"

// ScanBuild scores every non-medoid object in [begin, end) for the next
// medoid addition and returns the shard-local best candidate. While
// Initializing the score is the object's total distance to all objects;
// while Building it is the negated addition profit. Lower is better; the
// earliest object with the minimum score wins.
func ScanBuild(s *State, begin, end int) Candidate {
	best := Candidate{
		Object:   uint32(begin),
		Distance: float32(math.Inf(1)),
	}

	for object := begin; object < end; object++ {
		if s.IsMedoid(object) {
			continue
		}

		var score float32
		if s.Phase() == PhaseInitializing {
			score = s.DistanceToAll(object)
		} else {
			score = -s.AddMedoidProfit(object)
		}

		if score < best.Distance {
			best.Distance = score
			best.Object = uint32(object)
		}
	}

	return best
}

// ScanSwap scores every (medoid, non-medoid object) pair with the object
// in [begin, end) and returns the shard-local best candidate. The scan is
// seeded with distance 0 so only a strictly improving swap can win.
func ScanSwap(s *State, begin, end int) Candidate {
	best := Candidate{
		Object:   uint32(begin),
		Medoid:   uint32(s.medoids[0]),
		Distance: 0,
	}

	for object := begin; object < end; object++ {
		if s.IsMedoid(object) {
			continue
		}

		for _, medoid := range s.medoids {
			result := s.SwapResult(medoid, object)
			if result < best.Distance {
				best.Distance = result
				best.Medoid = uint32(medoid)
				best.Object = uint32(object)
			}
		}
	}

	return best
}
