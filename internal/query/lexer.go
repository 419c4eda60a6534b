package query

import (
	"strings"
	"unicode"
)

// TokenKind classifies a lexed token.
type TokenKind int

// Token kinds produced by the lexer.
const (
	TokenWord TokenKind = iota
	TokenPhrase
	TokenAnd
	TokenOr
	TokenNot
	TokenField
	TokenLParen
	TokenRParen
	TokenEOF
)

// Token is a single lexical unit of a query string.
type Token struct {
	Kind TokenKind

	// Value is the token text. For TokenField it is the value part;
	// Field holds the field name.
	Value string
	Field string
}

// Lex splits a raw query string into tokens. Operators AND, OR and NOT
// are recognised case-insensitively. Quoted strings become phrases, and
// name:value pairs become field tokens. An unterminated quote runs to
// the end of the input.
func Lex(input string) []Token {
	var tokens []Token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			tokens = append(tokens, Token{Kind: TokenLParen, Value: "("})
			i++

		case r == ')':
			tokens = append(tokens, Token{Kind: TokenRParen, Value: ")"})
			i++

		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenPhrase, Value: string(runes[i+1 : j])})
			if j < len(runes) {
				j++ // closing quote
			}
			i = j

		default:
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) && runes[j] != '(' && runes[j] != ')' && runes[j] != '"' {
				j++
			}
			word := string(runes[i:j])
			i = j
			tokens = append(tokens, classifyWord(word))
		}
	}

	return append(tokens, Token{Kind: TokenEOF})
}

func classifyWord(word string) Token {
	switch strings.ToUpper(word) {
	case "AND":
		return Token{Kind: TokenAnd, Value: "AND"}
	case "OR":
		return Token{Kind: TokenOr, Value: "OR"}
	case "NOT":
		return Token{Kind: TokenNot, Value: "NOT"}
	}

	// name:value with a non-empty name and value is a field token.
	// A colon anywhere else stays part of the word.
	if idx := strings.Index(word, ":"); idx > 0 && idx < len(word)-1 {
		return Token{
			Kind:  TokenField,
			Field: strings.ToLower(word[:idx]),
			Value: word[idx+1:],
		}
	}

	return Token{Kind: TokenWord, Value: word}
}
