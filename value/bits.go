package value

import "math"

func doubleBits(v float64) uint64    { return math.Float64bits(v) }
func doubleFromBits(b uint64) float64 { return math.Float64frombits(b) }
