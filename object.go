package jscore

import (
	"cmp"
	"slices"
)

const (
	classObject   = "Object"
	classFunction = "Function"
)

type objectImpl interface {
	heapNode
	className() string
	base() *baseObject
}

// baseObject is the property table shared by every object kind.
//
// String keys keep their insertion order in propNames; integer-like keys are
// ordered numerically when enumerated, so no ordering is maintained on
// insert. A value in values or symValues is either a plain Value (writable,
// enumerable, configurable data property) or a *valueProperty.
type baseObject struct {
	class      string
	prototype  ObjectRef
	extensible bool

	values    map[string]Value
	propNames []string

	symValues map[*Symbol]Value
	symNames  []*Symbol
}

func (o *baseObject) init() {
	o.values = make(map[string]Value)
}

func (o *baseObject) className() string {
	return o.class
}

func (o *baseObject) base() *baseObject {
	return o
}

func (o *baseObject) getOwnProp(k PropertyKey) Value {
	if k.sym != nil {
		return o.symValues[k.sym]
	}
	return o.values[k.name]
}

func (o *baseObject) hasOwn(k PropertyKey) bool {
	return o.getOwnProp(k) != nil
}

func (o *baseObject) _put(k PropertyKey, v Value) {
	if k.sym != nil {
		if o.symValues == nil {
			o.symValues = make(map[*Symbol]Value, 1)
		}
		if _, exists := o.symValues[k.sym]; !exists {
			o.symNames = append(o.symNames, k.sym)
		}
		o.symValues[k.sym] = v
		return
	}
	if _, exists := o.values[k.name]; !exists {
		o.propNames = append(o.propNames, k.name)
	}
	o.values[k.name] = v
}

func (o *baseObject) _putProp(name string, value Value, writable, enumerable, configurable bool) Value {
	prop := valueProp(value, writable, enumerable, configurable)
	o._put(StringKey(name), prop)
	return prop
}

func (o *baseObject) _delete(k PropertyKey) {
	if k.sym != nil {
		delete(o.symValues, k.sym)
		if i := slices.Index(o.symNames, k.sym); i >= 0 {
			o.symNames = slices.Delete(o.symNames, i, i+1)
		}
		return
	}
	delete(o.values, k.name)
	if i := slices.Index(o.propNames, k.name); i >= 0 {
		o.propNames = slices.Delete(o.propNames, i, i+1)
	}
}

func isEnumerable(prop Value) bool {
	if prop, ok := prop.(*valueProperty); ok {
		return prop.enumerable
	}
	return prop != nil
}

type indexedName struct {
	idx  uint64
	name string
}

// ownKeys appends the string keys: integer-like keys in ascending numeric
// order, then the remaining keys in insertion order. Non-enumerable keys are
// skipped unless all is set.
func (o *baseObject) ownKeys(all bool, accum []PropertyKey) []PropertyKey {
	var indexed []indexedName
	start := len(accum)
	for _, name := range o.propNames {
		if !all && !isEnumerable(o.values[name]) {
			continue
		}
		if idx, ok := integerIndex(name); ok {
			indexed = append(indexed, indexedName{idx, name})
			continue
		}
		accum = append(accum, StringKey(name))
	}
	if len(indexed) == 0 {
		return accum
	}
	slices.SortFunc(indexed, func(a, b indexedName) int {
		return cmp.Compare(a.idx, b.idx)
	})
	ordinary := append([]PropertyKey(nil), accum[start:]...)
	accum = accum[:start]
	for _, item := range indexed {
		accum = append(accum, StringKey(item.name))
	}
	return append(accum, ordinary...)
}

// ownSymbols appends the symbol keys in insertion order.
func (o *baseObject) ownSymbols(all bool, accum []PropertyKey) []PropertyKey {
	for _, s := range o.symNames {
		if !all && !isEnumerable(o.symValues[s]) {
			continue
		}
		accum = append(accum, SymbolKey(s))
	}
	return accum
}

func (o *baseObject) trace(m *marker) {
	m.markObject(o.prototype)
	for _, v := range o.values {
		m.markProp(v)
	}
	for _, v := range o.symValues {
		m.markProp(v)
	}
}
