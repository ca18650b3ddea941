package pool

// Bitmap exposes the occupancy word to tests.
func (p *Pool) Bitmap() uint64 { return p.bits.Load() }

// Materialized counts slots whose page has been allocated.
func (p *Pool) Materialized() int {
	n := 0
	for _, payload := range p.pages {
		if payload != nil {
			n++
		}
	}
	return n
}
