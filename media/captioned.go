package media

// captioned draws an overlay onto every frame of the wrapped source.
type captioned struct {
	Source
	overlay *Overlay
}

// WithOverlay returns src with o blended onto every frame it produces.
// A nil overlay returns src unchanged. The wrapped source must hand out
// frames it does not keep.
func WithOverlay(src Source, o *Overlay) Source {
	if o == nil {
		return src
	}
	return &captioned{Source: src, overlay: o}
}

func (c *captioned) Update() *Frame {
	f := c.Source.Update()
	c.overlay.Apply(f)
	return f
}
