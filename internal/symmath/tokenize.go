package symmath

import (
	"fmt"
	"unicode"
)

// Tokenize splits expression text into identifier, number, operator,
// parenthesis, comma and quoted-literal tokens. Whitespace separates tokens
// and is discarded. The exponentiation operator "**" is rejected: width
// expressions must stay polynomial in their free variables.
func Tokenize(text string) ([]string, error) {
	var tokens []string
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(' || c == ')' || c == ',' || c == '+' || c == '-' || c == '/':
			tokens = append(tokens, string(c))
			i++
		case c == '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				return nil, &ParseError{Text: text, Msg: `exponentiation "**" is not supported`}
			}
			tokens = append(tokens, "*")
			i++
		case c == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			if j == len(runes) {
				return nil, &ParseError{Text: text, Msg: "unterminated quoted literal"}
			}
			tokens = append(tokens, string(runes[i:j+1]))
			i = j + 1
		case unicode.IsDigit(c):
			j := i
			sawDot := false
			for j < len(runes) && (unicode.IsDigit(runes[j]) || (runes[j] == '.' && !sawDot)) {
				if runes[j] == '.' {
					sawDot = true
				}
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		default:
			return nil, &ParseError{Text: text, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return tokens, nil
}
