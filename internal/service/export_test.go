package service

import "io"

// SetRandomSource swaps the generator's entropy source.
func (g *ShortLinkGenerator) SetRandomSource(r io.Reader) {
	g.random = r
}
