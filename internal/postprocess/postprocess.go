package postprocess

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

/*
Post-processing works on rendered HTML only. It never talks to the browser.

- Select narrows a document to the elements matching a CSS selector
- ToMarkdown converts with CommonMark rules plus GFM tables
- Text keeps the visible text of the document
*/

// Apply narrows html to selector (when non-empty) and converts it to format.
func Apply(rendered string, selector string, format Format) (Output, error) {
	doc, err := parse(rendered)
	if err != nil {
		return Output{}, err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	content := rendered
	if selector != "" {
		content, err = selectFrom(doc, selector)
		if err != nil {
			return Output{}, err
		}
	}

	switch format {
	case FormatHTML, "":
		format = FormatHTML
	case FormatMarkdown:
		content, err = ToMarkdown(content)
	case FormatText:
		content, err = Text(content)
	default:
		err = &ProcessError{Message: string(format), Cause: ErrCauseUnknownFormat}
	}
	if err != nil {
		return Output{}, err
	}

	return Output{content: content, format: format, title: title}, nil
}

// Select returns the outer HTML of every element matching selector, in
// document order, one per line.
func Select(rendered string, selector string) (string, error) {
	doc, err := parse(rendered)
	if err != nil {
		return "", err
	}
	return selectFrom(doc, selector)
}

func selectFrom(doc *goquery.Document, selector string) (string, error) {
	matches := doc.Find(selector)
	if matches.Length() == 0 {
		return "", &ProcessError{Message: selector, Cause: ErrCauseNoMatch}
	}

	parts := make([]string, 0, matches.Length())
	var outerErr error
	matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		outer, err := goquery.OuterHtml(s)
		if err != nil {
			outerErr = err
			return false
		}
		parts = append(parts, outer)
		return true
	})
	if outerErr != nil {
		return "", &ProcessError{Message: outerErr.Error(), Cause: ErrCauseParseFailure}
	}
	return strings.Join(parts, "\n"), nil
}

// Title returns the trimmed <title> text, or "" when there is none.
func Title(rendered string) string {
	doc, err := parse(rendered)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func ToMarkdown(rendered string) (string, error) {
	node, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return "", &ProcessError{Message: err.Error(), Cause: ErrCauseParseFailure}
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	markdown, err := conv.ConvertNode(node)
	if err != nil {
		return "", &ProcessError{Message: err.Error(), Cause: ErrCauseConversionFailure}
	}
	return strings.TrimSpace(string(markdown)), nil
}

// Text returns the body text with runs of blank lines collapsed. Script and
// style contents are dropped.
func Text(rendered string) (string, error) {
	doc, err := parse(rendered)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	lines := strings.Split(root.Text(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

func parse(rendered string) (*goquery.Document, error) {
	node, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, &ProcessError{Message: err.Error(), Cause: ErrCauseParseFailure}
	}
	return goquery.NewDocumentFromNode(node), nil
}
