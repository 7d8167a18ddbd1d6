package rdf

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Node is a statement term.
//
// This is a sealed interface - only IRI, Blank and Literal implement it.
// All implementations are comparable, so Nodes can be used as map keys.
type Node interface {
	rdfNode()

	// N3 returns the canonical text encoding of the term.
	N3() string
}

// IRI identifies a resource, property, class or graph.
type IRI string

func (IRI) rdfNode() {}

// N3 returns <iri>.
func (i IRI) N3() string { return "<" + string(i) + ">" }

func (i IRI) String() string { return string(i) }

// Blank is a batch-local placeholder for a resource that has no store
// identifier yet. The label excludes the "_:" prefix.
type Blank string

func (Blank) rdfNode() {}

// N3 returns _:label.
func (b Blank) N3() string { return "_:" + string(b) }

func (b Blank) String() string { return b.N3() }

// Literal is a literal value. Datatype and Lang are mutually exclusive; a
// literal with neither is a plain literal.
type Literal struct {
	Lexical  string
	Datatype IRI
	Lang     string
}

func (Literal) rdfNode() {}

// N3 returns the quoted lexical form with its datatype or language suffix.
func (l Literal) N3() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(escapeLexical(l.Lexical))
	b.WriteByte('"')
	switch {
	case l.Datatype != "":
		b.WriteString("^^")
		b.WriteString(l.Datatype.N3())
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(l.Lang)
	}
	return b.String()
}

func (l Literal) String() string { return l.N3() }

// IsPlain reports whether the literal carries neither datatype nor language.
func (l Literal) IsPlain() bool { return l.Datatype == "" }

// IsInteger reports whether the literal is typed with one of the XSD integer
// datatypes.
func (l Literal) IsInteger() bool {
	switch l.Datatype {
	case XSDInt, XSDInteger, XSDLong, XSDShort, XSDByte,
		XSDUnsignedInt, XSDUnsignedLong, XSDUnsignedShort, XSDNonNegativeInteger:
		return true
	}
	return false
}

// NewString creates a plain literal.
func NewString(s string) Literal {
	return Literal{Lexical: norm.NFC.String(s)}
}

// NewLangString creates a language-tagged literal.
func NewLangString(s, lang string) Literal {
	return Literal{Lexical: norm.NFC.String(s), Lang: strings.ToLower(lang)}
}

// NewTyped creates a typed literal.
func NewTyped(lexical string, datatype IRI) Literal {
	return Literal{Lexical: norm.NFC.String(lexical), Datatype: datatype}
}

// NewInt creates an xsd:int literal.
func NewInt(v int64) Literal {
	return Literal{Lexical: strconv.FormatInt(v, 10), Datatype: XSDInt}
}

// NewBool creates an xsd:boolean literal.
func NewBool(v bool) Literal {
	return Literal{Lexical: strconv.FormatBool(v), Datatype: XSDBoolean}
}

// DateTimeLayout is the lexical form used for xsd:dateTime values written by
// the store. Millisecond precision, always UTC.
const DateTimeLayout = "2006-01-02T15:04:05.000Z"

// NewDateTime creates an xsd:dateTime literal in UTC.
func NewDateTime(t time.Time) Literal {
	return Literal{Lexical: t.UTC().Format(DateTimeLayout), Datatype: XSDDateTime}
}

// Equal reports whether two nodes are the same term.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// Compare orders nodes by their N3 encoding.
func Compare(a, b Node) int {
	return strings.Compare(a.N3(), b.N3())
}

// SortNodes sorts nodes in place by their N3 encoding.
func SortNodes(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool { return Compare(nodes[i], nodes[j]) < 0 })
}

// SortIRIs sorts IRIs in place.
func SortIRIs(iris []IRI) {
	sort.Slice(iris, func(i, j int) bool { return iris[i] < iris[j] })
}

// IsReference reports whether n names a resource (IRI or blank).
func IsReference(n Node) bool {
	switch n.(type) {
	case IRI, Blank:
		return true
	}
	return false
}

var errEmptyTerm = errors.New("empty term")

// ParseN3 decodes a term produced by Node.N3.
func ParseN3(s string) (Node, error) {
	switch {
	case s == "":
		return nil, errEmptyTerm
	case strings.HasPrefix(s, "<"):
		if !strings.HasSuffix(s, ">") || len(s) < 3 {
			return nil, fmt.Errorf("malformed IRI %q", s)
		}
		return IRI(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, "_:"):
		if len(s) == 2 {
			return nil, fmt.Errorf("malformed blank node %q", s)
		}
		return Blank(s[2:]), nil
	case strings.HasPrefix(s, `"`):
		return parseLiteral(s, nil)
	}
	return nil, fmt.Errorf("unrecognised term %q", s)
}

// MustParseN3 is like ParseN3 but panics on error.
// Use only in tests or for constants.
func MustParseN3(s string) Node {
	n, err := ParseN3(s)
	if err != nil {
		panic(err)
	}
	return n
}

// parseLiteral decodes "lexical"[^^datatype|@lang]. The datatype may be an
// <iri> or, when ns is non-nil, a prefixed name.
func parseLiteral(s string, ns Namespaces) (Literal, error) {
	end := closingQuote(s)
	if end < 0 {
		return Literal{}, fmt.Errorf("unterminated literal %q", s)
	}
	lexical, err := unescapeLexical(s[1:end])
	if err != nil {
		return Literal{}, fmt.Errorf("literal %q: %w", s, err)
	}
	rest := s[end+1:]
	switch {
	case rest == "":
		return NewString(lexical), nil
	case strings.HasPrefix(rest, "@"):
		if len(rest) == 1 {
			return Literal{}, fmt.Errorf("literal %q: empty language tag", s)
		}
		return NewLangString(lexical, rest[1:]), nil
	case strings.HasPrefix(rest, "^^"):
		dt := rest[2:]
		if strings.HasPrefix(dt, "<") && strings.HasSuffix(dt, ">") && len(dt) > 2 {
			return NewTyped(lexical, IRI(dt[1:len(dt)-1])), nil
		}
		if ns != nil {
			iri, err := ns.Expand(dt)
			if err != nil {
				return Literal{}, fmt.Errorf("literal %q: %w", s, err)
			}
			return NewTyped(lexical, iri), nil
		}
		return Literal{}, fmt.Errorf("literal %q: malformed datatype", s)
	}
	return Literal{}, fmt.Errorf("literal %q: trailing characters %q", s, rest)
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

var lexicalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLexical(s string) string {
	return lexicalEscaper.Replace(s)
}

func unescapeLexical(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", errors.New("dangling escape")
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}
