package jscore

import (
	"fmt"
	"sync"
)

// Symbol is a unique property key. Two symbols are the same only if they
// are the same *Symbol, whatever their descriptions.
type Symbol struct {
	desc    string
	hasDesc bool
}

var (
	SymHasInstance  = &Symbol{desc: "Symbol.hasInstance", hasDesc: true}
	SymToPrimitive  = &Symbol{desc: "Symbol.toPrimitive", hasDesc: true}
	SymToStringTag  = &Symbol{desc: "Symbol.toStringTag", hasDesc: true}
	wellKnownSymbol = []*Symbol{SymHasInstance, SymToPrimitive, SymToStringTag}
)

// NewSymbol returns a fresh symbol with the given description.
func NewSymbol(description string) *Symbol {
	return &Symbol{
		desc:    description,
		hasDesc: true,
	}
}

// NewUniqueSymbol returns a fresh symbol without a description, the
// equivalent of Symbol().
func NewUniqueSymbol() *Symbol {
	return &Symbol{}
}

// Description returns the symbol's description and whether it has one.
func (s *Symbol) Description() (string, bool) {
	return s.desc, s.hasDesc
}

func (s *Symbol) descString() string {
	return fmt.Sprintf("Symbol(%s)", s.desc)
}

// The registry is shared by every Runtime in the process and is never
// pruned; interned symbols live as long as the process.
var symbolRegistry struct {
	sync.Mutex
	byKey  map[string]*Symbol
	keyFor map[*Symbol]string
}

// InternSymbol returns the symbol registered under key, creating and
// registering it on first use. This is Symbol.for(key).
func InternSymbol(key string) *Symbol {
	symbolRegistry.Lock()
	defer symbolRegistry.Unlock()
	if v := symbolRegistry.byKey[key]; v != nil {
		return v
	}
	if symbolRegistry.byKey == nil {
		symbolRegistry.byKey = make(map[string]*Symbol)
		symbolRegistry.keyFor = make(map[*Symbol]string)
	}
	v := NewSymbol(key)
	symbolRegistry.byKey[key] = v
	symbolRegistry.keyFor[v] = key
	return v
}

// LookupInternedKey returns the registry key of sym. ok is false for symbols
// that were not created by InternSymbol. This is Symbol.keyFor(sym).
func LookupInternedKey(sym *Symbol) (key string, ok bool) {
	symbolRegistry.Lock()
	defer symbolRegistry.Unlock()
	key, ok = symbolRegistry.keyFor[sym]
	return
}

// WellKnownSymbols lists the system symbols the core recognises.
func WellKnownSymbols() []*Symbol {
	return append([]*Symbol(nil), wellKnownSymbol...)
}
