package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	linkify "github.com/derwolz/rebelreads-linkify"
)

const sample = "check /books/42 and /book-shelf/share?username=al%20ice&shelfname=faves now"

// ---------------------------------------------------------------------------
// TestText - Plain text with preview markers
// ---------------------------------------------------------------------------

func TestText(t *testing.T) {
	t.Parallel()

	segments := linkify.Parse(sample)

	tests := []struct {
		name   string
		marker string
		want   string
	}{
		{
			name:   "empty marker keeps source",
			marker: "",
			want:   sample,
		},
		{
			name:   "default marker",
			marker: "[{kind}:{path}]",
			want:   "check [book:/books/42] and [bookshelf:/book-shelf/share?username=al+ice&shelfname=faves] now",
		},
		{
			name:   "marker without placeholders",
			marker: "<card>",
			want:   "check <card> and <card> now",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Text(segments, tt.marker); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	t.Parallel()

	data, err := JSON(linkify.Parse("check /books/42"))
	if err != nil {
		t.Fatalf("JSON() unexpected error: %v", err)
	}
	want := `[{"type":"text","text":"check "},{"type":"preview","kind":"book","id":42,"source":"/books/42"}]`
	if string(data) != want {
		t.Errorf("JSON() = %s, want %s", data, want)
	}

	empty, err := JSON(nil)
	if err != nil {
		t.Fatalf("JSON(nil) unexpected error: %v", err)
	}
	if string(empty) != "[]" {
		t.Errorf("JSON(nil) = %s, want []", empty)
	}
}

// ---------------------------------------------------------------------------
// TestHTML - Escaped fragment with preview placeholders
// ---------------------------------------------------------------------------

func TestHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "book preview",
			input: "check /books/42 now",
			want:  `check <div class="link-preview" data-kind="book" data-id="42" data-path="/books/42"></div> now`,
		},
		{
			name:  "bookshelf preview escapes attributes",
			input: "/book-shelf/share?username=al%20ice&shelfname=a%22b",
			want: `<div class="link-preview" data-kind="bookshelf" data-username="al ice" data-shelf-name="a&#34;b"` +
				` data-path="/book-shelf/share?username=al+ice&amp;shelfname=a%22b"></div>`,
		},
		{
			name:  "text is escaped",
			input: "<script>alert(1)</script> & more",
			want:  "&lt;script&gt;alert(1)&lt;/script&gt; &amp; more",
		},
		{
			name:  "stripped link leaves surrounding text",
			input: "see https://example.com/x ok",
			want:  "see  ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := HTML(linkify.Parse(tt.input))
			if err != nil {
				t.Fatalf("HTML() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("HTML() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	segments := linkify.Parse("check /books/42")

	for _, format := range Formats() {
		var buf bytes.Buffer
		if err := Write(&buf, format, segments, "[{path}]"); err != nil {
			t.Errorf("Write(%s) unexpected error: %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s) produced no output", format)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, "JSON", segments, ""); err != nil {
		t.Errorf("Write(JSON) should be case insensitive: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "[") {
		t.Errorf("Write(JSON) = %q, want array", buf.String())
	}

	err := Write(&buf, "pdf", segments, "")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Write(pdf) error = %v, want ErrUnknownFormat", err)
	}
}
