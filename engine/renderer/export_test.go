package renderer

// SetCycle overwrites the frame counter.
func SetCycle(r Renderer, cycle uint) {
	r.(*renderer).cycle = cycle
}
