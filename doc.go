// Package linkify turns reader comments into text and rich-preview segments.
//
// # Quick Start
//
//	segments := linkify.Parse("check /books/42 now")
//	// [Text("check "), Preview(Book{42}), Text(" now")]
//
// The result is an ordered slice of Segment values. Text segments carry
// literal characters; preview segments carry a LinkReference (BookRef or
// BookshelfRef) that the rendering layer turns into a card.
//
// # Rules
//
// Links are recognized in a fixed order:
//
//  1. Book links: /books/<id>, optionally prefixed by the site domain
//  2. Bookshelf share links: /book-shelf/share?username=<u>&shelfname=<s>
//  3. Bare mentions of the site domain, kept verbatim
//  4. Any other http(s):// or www. URL, removed unless its host is the site
//
// A link counts only when surrounded by whitespace or the ends of the
// message. Everything outside matched links, whitespace included, is kept
// byte for byte.
//
// # Configuration
//
// Use options for a different site or staging hosts:
//
//	p, err := linkify.New(
//	    linkify.WithSiteDomain("example.org"),
//	    linkify.WithExtraSiteDomains("staging.example.net"),
//	)
//
// # Concurrency
//
// Parsing is a pure function of its input. A *Parser holds only compiled
// patterns and may be shared by any number of goroutines.
package linkify
