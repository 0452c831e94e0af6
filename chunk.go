package harvest

// Chunk is a token-bounded span of the page text.
// Start and End are byte offsets into the source text. The first Overlap
// bytes of Text repeat the tail of the previous chunk.
type Chunk struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Tokens  int    `json:"tokens"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Overlap int    `json:"overlap"`
}

// Fresh returns the part of the chunk not shared with the previous chunk.
// Concatenating Fresh of all chunks in order reproduces the source text.
func (c Chunk) Fresh() string {
	return c.Text[c.Overlap:]
}
