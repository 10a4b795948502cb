//go:build !js

package interactive

// NewSession returns a readline session in line mode and a Bubble Tea session otherwise.
func NewSession(cfg Config) (Session, error) {
	if cfg.LineMode {
		return NewReadlineSession(cfg)
	}
	return NewBubbleSession(cfg)
}
