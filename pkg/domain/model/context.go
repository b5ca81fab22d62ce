package model

// Segment source labels used in assembled payloads and degradation flags
const (
	SegmentSourceSession  = "session"
	SegmentSourceProfile  = "profile"
	SegmentSourceSemantic = "semantic"
)

// Segment is one text unit of an assembled context payload
type Segment struct {
	Source string
	Text   string
}

// ContextPayload is an ordered list of context segments bounded by a
// character budget. It is produced fresh on every assembly call and is
// never persisted or cached.
type ContextPayload struct {
	segments []Segment
	size     int
	budget   int
	degraded []string
}

// NewContextPayload creates an empty payload with the given character budget
func NewContextPayload(budget int) *ContextPayload {
	return &ContextPayload{budget: budget}
}

// Append adds a segment if it fits within the remaining budget. Segments
// are never truncated: a segment that would overflow is dropped whole and
// false is returned.
func (p *ContextPayload) Append(source, text string) bool {
	if text == "" {
		return false
	}
	if p.size+len(text) > p.budget {
		return false
	}
	p.segments = append(p.segments, Segment{Source: source, Text: text})
	p.size += len(text)
	return true
}

// MarkDegraded records that a source was unavailable during assembly
func (p *ContextPayload) MarkDegraded(source string) {
	for _, s := range p.degraded {
		if s == source {
			return
		}
	}
	p.degraded = append(p.degraded, source)
}

// Segments returns the ordered segments of the payload
func (p *ContextPayload) Segments() []Segment {
	return p.segments
}

// Size returns the total character count of all segments
func (p *ContextPayload) Size() int {
	return p.size
}

// Budget returns the configured character budget
func (p *ContextPayload) Budget() int {
	return p.budget
}

// Degraded returns the sources that were unavailable during assembly
func (p *ContextPayload) Degraded() []string {
	return p.degraded
}

// IsDegraded reports whether any source was unavailable
func (p *ContextPayload) IsDegraded() bool {
	return len(p.degraded) > 0
}

// Empty reports whether the payload carries no segments
func (p *ContextPayload) Empty() bool {
	return len(p.segments) == 0
}

// Text joins all segments into the final payload string consumed by the
// inference call
func (p *ContextPayload) Text() string {
	out := make([]byte, 0, p.size+len(p.segments))
	for i, s := range p.segments {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, s.Text...)
	}
	return string(out)
}
