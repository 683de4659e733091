package port

// Chunker splits text into ordered chunk texts. Deterministic and pure:
// the same input always produces the same output, and the output is
// never empty for a non-rejected call.
type Chunker interface {
	Split(text string) []string
}
