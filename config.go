package mustache

// Config configures a Parser, per spec.md §6's external interface.
type Config struct {
	// Delimiters is the initial starting/ending delimiter pair. Zero value
	// selects DefaultDelimiters.
	Delimiters Delimiters

	// WithLambdas enables section/inverted-section/parent/block inner-text
	// capture (spec.md §6's "optional feature flag for lambda inner-text
	// capture"). Off by default: capturing costs a pinned bookmark index
	// per open level even when no caller consumes InnerText.
	WithLambdas bool

	// DisableStandaloneTrim turns off the standalone-line whitespace
	// trimming behavior of spec.md §4.3/§4.4. Trimming is on by default
	// (spec.md §6: "optional flag... default on"); the flag is phrased as
	// a disable so the Config zero value matches that default.
	DisableStandaloneTrim bool

	// BufSize overrides scanio.DefaultBufSize for file sources.
	BufSize int

	// Streamed selects incremental batch emission (Parser.Next returning
	// one flushed batch at a time) instead of buffering the whole tree in
	// memory, per spec.md §5's streamed-vs-cached tree building.
	Streamed bool
}

func (c Config) delimiters() Delimiters {
	if c.Delimiters == (Delimiters{}) {
		return DefaultDelimiters
	}
	return c.Delimiters
}
