//go:build js

package interactive

// NewSession reports ErrUnsupported: in the browser fields are masked in the page.
func NewSession(cfg Config) (Session, error) {
	return nil, ErrUnsupported
}
