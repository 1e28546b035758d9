package postprocess

import "strings"

type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts the format names case-insensitively, plus "md".
// An empty name means html.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", &ProcessError{
			Message: name,
			Cause:   ErrCauseUnknownFormat,
		}
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "text/html; charset=utf-8"
	}
}

type Output struct {
	content string
	format  Format
	title   string
}

func (o Output) Content() string {
	return o.content
}

func (o Output) Format() Format {
	return o.format
}

// Title is the document <title>, empty when absent.
func (o Output) Title() string {
	return o.title
}
