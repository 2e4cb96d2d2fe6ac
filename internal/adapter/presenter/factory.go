package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// New returns the presenter for format
func New(format string, w io.Writer) (output.Presenter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewTextPresenter(w), nil
	case FormatJSON:
		return NewJSONPresenter(w), nil
	case FormatYAML, "yml":
		return NewYAMLPresenter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
