package chunker

// Window splits text into fixed-size chunks where each chunk repeats the
// last overlap characters of the previous one. Splitting is rune-based so
// multi-byte characters are never cut in half.
type Window struct {
	size    int
	overlap int
}

const (
	DefaultSize    = 512
	DefaultOverlap = 32
)

func NewWindow(size, overlap int) *Window {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Window{size: size, overlap: overlap}
}

// Split returns the ordered chunk texts covering the whole input. It
// always returns at least one chunk; empty input yields one empty chunk.
// The loop terminates even for overlap >= size: the window start always
// advances by at least one rune.
func (w *Window) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + w.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		next := end - w.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}
