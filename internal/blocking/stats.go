package blocking

// Stats is the per-KB blocking statistics record named in §4.4/§9: for
// each of B1..B6 (1-indexed in the spec, 0-indexed here), the number of
// tests and of rejections, plus the total number of successful blocking
// decisions. Grounded on Kernel/Blocking.cpp's process-wide `tries`/
// `fails`/`nSucc` counters, reframed as a field set on Engine instead of
// global state so that two KBs opened in the same process (or two runs of
// the same KB's test suite) never share counters.
type Stats struct {
	Tries     [6]uint64
	Fails     [6]uint64
	Succeeded uint64
}

// Reset zeroes every counter, mirroring clearBlockingStat's reset at the
// start of each consistency check.
func (s *Stats) Reset() { *s = Stats{} }
