package linkify

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// DefaultSiteDomain is the marketplace's own domain.
const DefaultSiteDomain = "sirened.com"

// DefaultMaxMessageSize bounds the input that is scanned for previews.
// Longer messages still have external URLs stripped but get no previews.
const DefaultMaxMessageSize = 64 << 10

// Parser turns comment text into segments. A Parser is immutable after New
// and safe for concurrent use.
type Parser struct {
	hosts   []string
	maxSize int
	rules   []matchRule
}

// parserConfig collects option values before validation.
type parserConfig struct {
	domain  string
	aliases []string
	maxSize int
}

// Option configures a Parser.
type Option func(*parserConfig)

// WithSiteDomain sets the domain whose links become previews.
// A leading "www." is ignored.
func WithSiteDomain(domain string) Option {
	return func(c *parserConfig) {
		c.domain = domain
	}
}

// WithExtraSiteDomains adds hosts treated as the site (e.g. a staging host).
func WithExtraSiteDomains(domains ...string) Option {
	return func(c *parserConfig) {
		c.aliases = append(c.aliases, domains...)
	}
}

// WithMaxMessageSize sets the largest message, in bytes, scanned for previews.
func WithMaxMessageSize(n int) Option {
	return func(c *parserConfig) {
		c.maxSize = n
	}
}

// New creates a Parser. Returns ErrInvalidDomain or ErrInvalidMaxSize when an
// option value is unusable.
func New(opts ...Option) (*Parser, error) {
	cfg := parserConfig{
		domain:  DefaultSiteDomain,
		maxSize: DefaultMaxMessageSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxSize <= 0 {
		return nil, fmt.Errorf("%w: %d (must be positive)", ErrInvalidMaxSize, cfg.maxSize)
	}

	hosts := make([]string, 0, 1+len(cfg.aliases))
	for _, d := range append([]string{cfg.domain}, cfg.aliases...) {
		host, err := normalizeDomain(d)
		if err != nil {
			return nil, err
		}
		if !containsString(hosts, host) {
			hosts = append(hosts, host)
		}
	}

	p := &Parser{
		hosts:   hosts,
		maxSize: cfg.maxSize,
	}
	p.rules = p.buildRules(hosts)
	return p, nil
}

// normalizeDomain validates a configured domain and returns its canonical form.
func normalizeDomain(domain string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimSuffix(strings.TrimPrefix(d, "www."), ".")
	if d == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDomain)
	}
	if strings.ContainsAny(d, "/:?#@ \t\n") {
		return "", fmt.Errorf("%w: %q (host name only, no scheme or path)", ErrInvalidDomain, domain)
	}
	ascii, err := idna.Lookup.ToASCII(d)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDomain, domain, err)
	}
	return ascii, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// defaultParser serves the package-level Parse. It is never mutated.
var defaultParser = mustNew()

func mustNew(opts ...Option) *Parser {
	p, err := New(opts...)
	if err != nil {
		panic("linkify: " + err.Error())
	}
	return p
}

// Default returns the parser for DefaultSiteDomain.
func Default() *Parser {
	return defaultParser
}

// Parse parses message with the default parser.
func Parse(message string) []Segment {
	return defaultParser.Parse(message)
}

// SiteDomain returns the primary site domain.
func (p *Parser) SiteDomain() string {
	return p.hosts[0]
}

// Parse splits message into text and preview segments in document order.
// It never fails: anything it cannot interpret stays as literal text.
func (p *Parser) Parse(message string) []Segment {
	edits, bindings := p.collectEdits(message, len(message) <= p.maxSize)
	return resolve(message, edits, bindings)
}

// Analyze parses message and also reports which URLs were stripped and
// which same-site URLs were kept verbatim. Both lists are non-nil.
func (p *Parser) Analyze(message string) Report {
	edits, bindings := p.collectEdits(message, len(message) <= p.maxSize)
	report := Report{
		Segments:  resolve(message, edits, bindings),
		Stripped:  []string{},
		Preserved: []string{},
	}
	for _, e := range edits {
		switch e.action {
		case actionStrip:
			report.Stripped = append(report.Stripped, message[e.start:e.end])
		case actionKeep:
			report.Preserved = append(report.Preserved, message[e.start:e.end])
		}
	}
	return report
}
