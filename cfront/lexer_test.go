package cfront

import "testing"

func lexAll(src string) []Token {
	l := NewLexer(src)
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == TokEOF {
			return toks
		}
	}
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	toks := lexAll("int x = 0;")
	want := []TokenType{TokInt, TokIdent, TokEq, TokNumber, TokSemicolon, TokEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d type = %s, want %s", i, toks[i].Type, w)
		}
	}
	if toks[1].Lexeme != "x" {
		t.Fatalf("ident lexeme = %q, want %q", toks[1].Lexeme, "x")
	}
}

func TestLexerNumberValue(t *testing.T) {
	toks := lexAll("42")
	if toks[0].Type != TokNumber || toks[0].IntVal != 42 {
		t.Fatalf("token = %+v, want NUMBER 42", toks[0])
	}
}

func TestLexerLineColTracking(t *testing.T) {
	toks := lexAll("int a;\nint b;")
	// second "int" keyword starts line 2
	var secondInt Token
	seen := 0
	for _, tok := range toks {
		if tok.Type == TokInt {
			seen++
			if seen == 2 {
				secondInt = tok
			}
		}
	}
	if secondInt.Line != 2 {
		t.Fatalf("second int's line = %d, want 2", secondInt.Line)
	}
}

func TestLexerStripsComments(t *testing.T) {
	toks := lexAll("int x; // trailing\n/* block */ int y;")
	var kinds []TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.Type)
	}
	want := []TokenType{TokInt, TokIdent, TokSemicolon, TokInt, TokIdent, TokSemicolon, TokEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(kinds), kinds, len(want))
	}
	for i, w := range want {
		if kinds[i] != w {
			t.Fatalf("token %d = %s, want %s", i, kinds[i], w)
		}
	}
}

func TestLexerOperators(t *testing.T) {
	toks := lexAll("== != <= >= && || ++ --")
	want := []TokenType{TokEqEq, TokBangEq, TokLtEq, TokGtEq, TokAmpAmp, TokPipePipe, TokPlusPlus, TokMinusMinus, TokEOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d = %s, want %s", i, toks[i].Type, w)
		}
	}
}
