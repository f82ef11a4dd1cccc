package linkify

import "strings"

// resolve applies edits to the original message in one pass.
//
// Kept spans merge into the surrounding text. A stripped span closes the
// current text segment without emitting anything. A preview whose binding
// cannot be resolved is emitted as literal text.
func resolve(message string, edits []edit, bindings []LinkReference) []Segment {
	segments := make([]Segment, 0, 2*len(edits)+1)

	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			segments = append(segments, TextSegment(text.String()))
			text.Reset()
		}
	}

	pos := 0
	for _, e := range edits {
		if e.start < pos || e.end > len(message) {
			// Out-of-order or out-of-range span; the bytes are already emitted.
			continue
		}
		text.WriteString(message[pos:e.start])
		span := message[e.start:e.end]

		switch e.action {
		case actionPreview:
			ref := lookupBinding(bindings, e.binding)
			if ref == nil {
				text.WriteString(span)
				break
			}
			flush()
			segments = append(segments, PreviewSegment(ref, span))
		case actionStrip:
			flush()
		default:
			text.WriteString(span)
		}
		pos = e.end
	}
	text.WriteString(message[pos:])
	flush()

	if len(segments) == 0 {
		return []Segment{TextSegment("")}
	}
	return segments
}

func lookupBinding(bindings []LinkReference, i int) LinkReference {
	if i < 0 || i >= len(bindings) {
		return nil
	}
	return bindings[i]
}

// Previews returns the link references of all preview segments, in order.
func Previews(segments []Segment) []LinkReference {
	var refs []LinkReference
	for _, s := range segments {
		if s.IsPreview() {
			refs = append(refs, s.Ref)
		}
	}
	return refs
}

// Join concatenates segments, replacing each preview with marker(ref).
// A nil marker restores the original matched substring.
func Join(segments []Segment, marker func(LinkReference) string) string {
	var b strings.Builder
	for _, s := range segments {
		if s.IsPreview() && marker != nil {
			b.WriteString(marker(s.Ref))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}
