package query

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"mosaic/internal/labels"
)

// Evaluate compiles and runs an expression against the snapshot, returning
// the bitmap of matching item indices. Evaluation never mutates the
// snapshot; on error the returned bitmap is nil.
func Evaluate(expr string, snap *labels.Snapshot) (*roaring.Bitmap, error) {
	if len(snap.Labels()) == 0 {
		return nil, ErrNoLabels
	}
	if strings.TrimSpace(expr) == "" {
		return nil, ErrEmptyExpression
	}
	toks, src, err := tokenize(expr, snap.Labels())
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src, snap: snap}
	result, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.errorf(tok.pos, "unexpected %s after complete expression", describe(tok))
	}
	return result, nil
}

// Match evaluates the expression and resolves the matching indices to item
// ids in index order.
func Match(expr string, snap *labels.Snapshot) ([]string, error) {
	result, err := Evaluate(expr, snap)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, result.GetCardinality())
	it := result.Iterator()
	for it.HasNext() {
		if id, ok := snap.Item(it.Next()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type parser struct {
	toks []token
	pos  int
	src  []rune
	snap *labels.Snapshot
}

func (p *parser) peek() (token, bool) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos], true
	}
	return token{}, false
}

func (p *parser) accept(kind tokenKind) bool {
	if tok, ok := p.peek(); ok && tok.kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) acceptLabel() (string, bool) {
	if tok, ok := p.peek(); ok && tok.kind == tokLabel {
		p.pos++
		return tok.text, true
	}
	return "", false
}

func (p *parser) errorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Offset:  pos,
		Excerpt: excerpt(p.src, pos),
		Reason:  fmt.Sprintf(format, args...),
	}
}

// errorHere builds a SyntaxError at the current token, or at end of input
// when the stream is exhausted.
func (p *parser) errorHere(reason string) *SyntaxError {
	if tok, ok := p.peek(); ok {
		return p.errorf(tok.pos, "%s", reason)
	}
	return &SyntaxError{Offset: len(p.src), Reason: reason}
}

func describe(tok token) string {
	if tok.kind == tokLabel {
		return fmt.Sprintf("label %q", tok.text)
	}
	return tok.kind.String()
}

// parseOr handles the lowest-precedence level: And ('+' And)*.
func (p *parser) parseOr() (*roaring.Bitmap, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left.Or(right)
	}
	return left, nil
}

// parseAnd handles Unary (AND Unary)*, where AND is the explicit '.' or the
// token synthesized for adjacency.
func (p *parser) parseAnd() (*roaring.Bitmap, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left.And(right)
	}
	return left, nil
}

// parseUnary handles the '!' and '?' prefixes. Applied directly to a label,
// '!' selects the label's no vector and '?' selects the items with neither
// bit set; applied to anything else, both complement their operand over the
// item universe.
func (p *parser) parseUnary() (*roaring.Bitmap, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.errorHere("expression ended where an operand was expected")
	}
	switch tok.kind {
	case tokNot:
		p.pos++
		if name, ok := p.acceptLabel(); ok {
			_, no, found := p.snap.Vectors(name)
			if !found {
				return nil, p.errorf(tok.pos, "unknown label %q", name)
			}
			return no, nil
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.complement(inner), nil
	case tokUnset:
		p.pos++
		if name, ok := p.acceptLabel(); ok {
			yes, no, found := p.snap.Vectors(name)
			if !found {
				return nil, p.errorf(tok.pos, "unknown label %q", name)
			}
			yes.Or(no)
			return p.complement(yes), nil
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.complement(inner), nil
	}
	return p.parseAtom()
}

// parseAtom handles Label | '(' Or ')'.
func (p *parser) parseAtom() (*roaring.Bitmap, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.errorHere("expression ended where an operand was expected")
	}
	switch tok.kind {
	case tokOpen:
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokClose) {
			return nil, p.errorHere("missing closing parenthesis")
		}
		return inner, nil
	case tokLabel:
		p.pos++
		yes, _, found := p.snap.Vectors(tok.text)
		if !found {
			return nil, p.errorf(tok.pos, "unknown label %q", tok.text)
		}
		return yes, nil
	}
	return nil, p.errorf(tok.pos, "unexpected %s", describe(tok))
}

func (p *parser) complement(v *roaring.Bitmap) *roaring.Bitmap {
	v.Flip(0, uint64(p.snap.Len()))
	return v
}
