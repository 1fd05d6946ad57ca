package jscore

import "strconv"

const __proto__ = "__proto__"

// PropertyKey is either a string or a symbol. The zero value is the empty
// string key.
type PropertyKey struct {
	name string
	sym  *Symbol
}

func StringKey(name string) PropertyKey {
	return PropertyKey{name: name}
}

func SymbolKey(sym *Symbol) PropertyKey {
	return PropertyKey{sym: sym}
}

func (k PropertyKey) IsSymbol() bool {
	return k.sym != nil
}

// Symbol returns the key's symbol, or nil for a string key.
func (k PropertyKey) Symbol() *Symbol {
	return k.sym
}

// Name returns the key's string, or "" for a symbol key.
func (k PropertyKey) Name() string {
	return k.name
}

// IsIntegerLike reports whether the key is a string in canonical decimal
// form of an integer in [0, 2^53-1].
func (k PropertyKey) IsIntegerLike() bool {
	if k.sym != nil {
		return false
	}
	_, ok := integerIndex(k.name)
	return ok
}

// Value returns the key as a string or symbol Value.
func (k PropertyKey) Value() Value {
	if k.sym != nil {
		return k.sym
	}
	return stringValue(k.name)
}

func (k PropertyKey) String() string {
	if k.sym != nil {
		return k.sym.descString()
	}
	return k.name
}

// integerIndex parses an integer-like key. "01", "-1", "1.0" and "1e3" are
// ordinary keys.
func integerIndex(s string) (uint64, bool) {
	if len(s) == 0 || len(s) > 16 {
		return 0, false
	}
	if s[0] == '0' {
		return 0, len(s) == 1
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n > maxInt-1 {
		return 0, false
	}
	return n, true
}
