// Package render turns parser segments into the CLI and API output formats.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	linkify "github.com/derwolz/rebelreads-linkify"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
)

// ErrUnknownFormat is returned by Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Marker placeholders substituted in Text.
const (
	markerKind = "{kind}"
	markerPath = "{path}"
)

// PreviewClass is the class attribute of preview placeholder elements.
const PreviewClass = "link-preview"

// Formats returns the supported format names.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatHTML}
}

// Write renders segments to w in the given format.
func Write(w io.Writer, format string, segments []linkify.Segment, marker string) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		_, err := io.WriteString(w, Text(segments, marker))
		return err
	case FormatJSON:
		data, err := JSON(segments)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatHTML:
		out, err := HTML(segments)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Text joins segments, replacing each preview with marker after
// substituting {kind} and {path}. An empty marker keeps the source text.
func Text(segments []linkify.Segment, marker string) string {
	if marker == "" {
		return linkify.Join(segments, nil)
	}
	return linkify.Join(segments, func(ref linkify.LinkReference) string {
		return strings.NewReplacer(markerKind, ref.Kind(), markerPath, ref.Path()).Replace(marker)
	})
}

// JSON encodes segments as a JSON array.
func JSON(segments []linkify.Segment) ([]byte, error) {
	if segments == nil {
		segments = []linkify.Segment{}
	}
	data, err := json.Marshal(segments)
	if err != nil {
		return nil, fmt.Errorf("encoding segments: %w", err)
	}
	return data, nil
}

// HTML renders segments as an HTML fragment. Text is escaped and each
// preview becomes an empty div carrying data-* attributes for the
// front-end card loader.
func HTML(segments []linkify.Segment) (string, error) {
	var buf strings.Builder
	for _, seg := range segments {
		if err := html.Render(&buf, segmentNode(seg)); err != nil {
			return "", fmt.Errorf("rendering html: %w", err)
		}
	}
	return buf.String(), nil
}

func segmentNode(seg linkify.Segment) *html.Node {
	if !seg.IsPreview() {
		return &html.Node{Type: html.TextNode, Data: seg.Text}
	}

	attrs := []html.Attribute{
		{Key: "class", Val: PreviewClass},
		{Key: "data-kind", Val: seg.Ref.Kind()},
	}
	switch ref := seg.Ref.(type) {
	case linkify.BookRef:
		attrs = append(attrs, html.Attribute{Key: "data-id", Val: strconv.FormatInt(ref.ID, 10)})
	case linkify.BookshelfRef:
		attrs = append(attrs,
			html.Attribute{Key: "data-username", Val: ref.Username},
			html.Attribute{Key: "data-shelf-name", Val: ref.ShelfName},
		)
	}
	attrs = append(attrs, html.Attribute{Key: "data-path", Val: seg.Ref.Path()})

	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr:     attrs,
	}
}
