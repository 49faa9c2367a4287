package expr

import "fmt"

// tokenKind identifies the lexical class of a token.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNewline
	tokenIdent
	tokenNumber
	tokenString
	tokenAssign   // =
	tokenEq       // ==
	tokenNotEq    // !=
	tokenLess     // <
	tokenLessEq   // <=
	tokenGreater  // >
	tokenGreatEq  // >=
	tokenPlus     // +
	tokenMinus    // -
	tokenStar     // *
	tokenSlash    // /
	tokenLParen   // (
	tokenRParen   // )
	tokenLBracket // [
	tokenRBracket // ]
	tokenComma    // ,
	tokenDot      // .
	tokenAnd      // and
	tokenOr       // or
	tokenNot      // not
	tokenIf       // if
	tokenElse     // else
	tokenFor      // for
	tokenIn       // in
	tokenTrue     // true
	tokenFalse    // false
	tokenNull     // null
)

// keywords maps reserved identifiers to their token kinds.
var keywords = map[string]tokenKind{
	"and":   tokenAnd,
	"or":    tokenOr,
	"not":   tokenNot,
	"if":    tokenIf,
	"else":  tokenElse,
	"for":   tokenFor,
	"in":    tokenIn,
	"true":  tokenTrue,
	"false": tokenFalse,
	"null":  tokenNull,
	// Accept the Python spellings used in the source policy documents.
	"True":  tokenTrue,
	"False": tokenFalse,
	"None":  tokenNull,
}

// token is a single lexical token with its source position.
type token struct {
	kind   tokenKind
	text   string
	line   int
	column int
}

func (t token) String() string {
	if t.kind == tokenEOF {
		return "end of program"
	}
	if t.kind == tokenNewline {
		return "end of line"
	}
	return fmt.Sprintf("%q", t.text)
}
