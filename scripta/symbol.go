package scripta

// Symbol is the balance-symbol projection of a token (C3): brackets get
// +1/-1 so runs of tokens can be tested for balance, other kinds carry a
// zero balance but keep their discriminating kind for isReducible/match.
type Symbol struct {
	Balance int
	Kind    TokenKind
}

func tokenSymbol(t Token) Symbol {
	switch t.Kind {
	case TokLB:
		return Symbol{Balance: 1, Kind: TokLB}
	case TokRB:
		return Symbol{Balance: -1, Kind: TokRB}
	default:
		return Symbol{Balance: 0, Kind: t.Kind}
	}
}

func symbols(tokens []Token) []Symbol {
	out := make([]Symbol, len(tokens))
	for i, t := range tokens {
		out[i] = tokenSymbol(t)
	}
	return out
}

// match returns the index (within syms) of the symbol that closes the head
// symbol syms[0], or -1 if there is none.
//
//   - For an opening bracket (Kind == TokLB) this is classic balanced-bracket
//     matching: count +1 for every TokLB and -1 for every TokRB, and stop at
//     the position where the running count returns to zero. -1 is returned
//     if the running count ever goes negative before that point, or if the
//     input runs out first.
//   - For TokMath/TokCode, the match is the first later occurrence of the
//     same kind (verbatim spans don't nest).
//   - Any other head has no matching close.
func match(syms []Symbol) int {
	if len(syms) == 0 {
		return -1
	}
	head := syms[0]

	switch head.Kind {
	case TokLB:
		depth := 0
		for i, s := range syms {
			depth += s.Balance
			if depth < 0 {
				return -1
			}
			if depth == 0 && i > 0 {
				return i
			}
		}
		return -1

	case TokMath, TokCode:
		for i := 1; i < len(syms); i++ {
			if syms[i].Kind == head.Kind {
				return i
			}
		}
		return -1

	default:
		return -1
	}
}

// isReducible reports whether syms, taken as a whole, is a fully balanced
// expression of one of the forms `[M ... M]`, `[C ... C]`, or
// `[L ST ... R]` with a recursively reducible interior, i.e. whether the
// entire pending stack can be collapsed to a single expression right now.
func isReducible(syms []Symbol) bool {
	if len(syms) < 2 {
		return false
	}

	head := syms[0]
	switch head.Kind {
	case TokMath, TokCode:
		return syms[len(syms)-1].Kind == head.Kind && match(syms) == len(syms)-1

	case TokLB:
		closeAt := match(syms)
		if closeAt != len(syms)-1 {
			return false
		}
		// Interior must start with a non-space token to serve as a function
		// name; an empty or whitespace-only interior is not reducible (it
		// falls through to the "Brackets must enclose something" recovery).
		for i := 1; i < closeAt; i++ {
			if syms[i].Kind == TokSpace {
				continue
			}
			return true
		}
		return false

	default:
		return false
	}
}

// splitAt splits tokens into the slice before index k and the slice from k
// onward.
func splitAt(k int, tokens []Token) ([]Token, []Token) {
	if k < 0 {
		k = 0
	}
	if k > len(tokens) {
		k = len(tokens)
	}
	return tokens[:k], tokens[k:]
}

// getSegment scans tokens for the first token of kind delim and returns the
// tokens before it, the tokens after it, and whether one was found.
func getSegment(delim TokenKind, tokens []Token) ([]Token, []Token, bool) {
	for i, t := range tokens {
		if t.Kind == delim {
			return tokens[:i], tokens[i+1:], true
		}
	}
	return tokens, nil, false
}
