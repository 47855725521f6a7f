package chunk

// Span describes a byte range within an object.
type Span struct {
	Offset int64
	Len    int64
}

// Spans lays out the parts of a total-byte object cut at size.
// A zero-length object has a single empty span.
func Spans(total int64, size int) []Span {
	if size <= 0 || total < 0 {
		return nil
	}
	if total == 0 {
		return []Span{{}}
	}
	step := int64(size)
	out := make([]Span, 0, (total+step-1)/step)
	for off := int64(0); off < total; off += step {
		n := step
		if total-off < n {
			n = total - off
		}
		out = append(out, Span{Offset: off, Len: n})
	}
	return out
}
