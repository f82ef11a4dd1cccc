package linkify

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Reference kinds.
const (
	KindBook      = "book"
	KindBookshelf = "bookshelf"
)

// Site paths recognized as internal links.
const (
	bookPathPrefix      = "/books/"
	bookshelfSharePath  = "/book-shelf/share"
	bookshelfUserParam  = "username"
	bookshelfShelfParam = "shelfname"
)

// LinkReference identifies the target of a rich preview.
// The set of implementations is closed: BookRef and BookshelfRef.
type LinkReference interface {
	// Kind returns KindBook or KindBookshelf.
	Kind() string
	// Path returns the canonical site-relative path of the target.
	Path() string

	isLinkReference()
}

// BookRef points at a single book listing.
type BookRef struct {
	ID int64
}

// Kind implements LinkReference.
func (BookRef) Kind() string { return KindBook }

// Path implements LinkReference.
func (b BookRef) Path() string {
	return bookPathPrefix + strconv.FormatInt(b.ID, 10)
}

func (BookRef) isLinkReference() {}

// BookshelfRef points at a shelf shared by its owner.
type BookshelfRef struct {
	Username  string
	ShelfName string
}

// Kind implements LinkReference.
func (BookshelfRef) Kind() string { return KindBookshelf }

// Path implements LinkReference. Both fields are re-encoded.
func (b BookshelfRef) Path() string {
	return bookshelfSharePath + "?" + bookshelfUserParam + "=" + url.QueryEscape(b.Username) +
		"&" + bookshelfShelfParam + "=" + url.QueryEscape(b.ShelfName)
}

func (BookshelfRef) isLinkReference() {}

// Compile-time checks that both variants implement LinkReference.
var (
	_ LinkReference = BookRef{}
	_ LinkReference = BookshelfRef{}
)

// SegmentKind distinguishes literal text from preview placeholders.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentPreview
)

// String returns the wire name of the kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentPreview:
		return "preview"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is one unit of parser output.
//
// For SegmentText, Text is the literal content. For SegmentPreview, Ref is the
// link target and Text holds the substring of the message it was parsed from.
type Segment struct {
	Kind SegmentKind
	Text string
	Ref  LinkReference
}

// TextSegment returns a literal text segment.
func TextSegment(s string) Segment {
	return Segment{Kind: SegmentText, Text: s}
}

// PreviewSegment returns a preview segment for ref parsed from source.
func PreviewSegment(ref LinkReference, source string) Segment {
	return Segment{Kind: SegmentPreview, Text: source, Ref: ref}
}

// IsPreview reports whether s renders as a rich preview.
func (s Segment) IsPreview() bool {
	return s.Kind == SegmentPreview && s.Ref != nil
}

// segmentJSON is the wire shape consumed by the rendering layer.
type segmentJSON struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Kind      string `json:"kind,omitempty"`
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username,omitempty"`
	ShelfName string `json:"shelfName,omitempty"`
	Source    string `json:"source,omitempty"`
}

// MarshalJSON encodes the segment in its wire shape.
func (s Segment) MarshalJSON() ([]byte, error) {
	if !s.IsPreview() {
		// Text is always present for text segments, even when empty.
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: SegmentText.String(), Text: s.Text})
	}

	out := segmentJSON{
		Type:   SegmentPreview.String(),
		Kind:   s.Ref.Kind(),
		Source: s.Text,
	}
	switch ref := s.Ref.(type) {
	case BookRef:
		out.ID = ref.ID
	case BookshelfRef:
		out.Username = ref.Username
		out.ShelfName = ref.ShelfName
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var in segmentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Type {
	case "text":
		*s = TextSegment(in.Text)
	case "preview":
		switch in.Kind {
		case KindBook:
			*s = PreviewSegment(BookRef{ID: in.ID}, in.Source)
		case KindBookshelf:
			*s = PreviewSegment(BookshelfRef{Username: in.Username, ShelfName: in.ShelfName}, in.Source)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownReferenceKind, in.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSegmentType, in.Type)
	}
	return nil
}

// Report is the moderation view of a parsed message.
type Report struct {
	Segments []Segment `json:"segments"`
	// Stripped lists external URLs removed from the message, in order.
	Stripped []string `json:"stripped"`
	// Preserved lists same-site URLs and bare domain mentions kept verbatim.
	Preserved []string `json:"preserved"`
}
