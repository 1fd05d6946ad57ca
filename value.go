package jscore

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"
)

var (
	valueFalse    Value = valueBool(false)
	valueTrue     Value = valueBool(true)
	_null         Value = valueNull{}
	_NaN          Value = valueFloat(math.NaN())
	_positiveInf  Value = valueFloat(math.Inf(+1))
	_negativeInf  Value = valueFloat(math.Inf(-1))
	_positiveZero Value = valueInt(0)
	negativeZero        = math.Float64frombits(0 | (1 << 63))
	_negativeZero Value = valueFloat(negativeZero)
	_undefined    Value = valueUndefined{}
)

const (
	maxInt = 1 << 53

	stringUndefined = "undefined"
	stringNull      = "null"
	stringTrue      = "true"
	stringFalse     = "false"
)

var intCache [256]Value

// Value is a tagged value. Undefined, null, booleans, numbers and strings are
// copied by value; *Symbol and ObjectRef are identities.
type Value interface {
	ToBoolean() bool
	// ToFloat is the primitive numeric view. Objects and symbols report NaN
	// here; use Runtime.ToNumber for the full conversion.
	ToFloat() float64
	String() string
	SameAs(Value) bool
	StrictEquals(Value) bool
	Export() interface{}

	typeOf() string
}

type valueInt int64
type valueFloat float64
type valueBool bool
type valueString string
type valueNull struct{}
type valueUndefined struct {
	valueNull
}

// valueProperty is stored in a property table in place of a plain value when
// the property is an accessor or has non-default attributes.
type valueProperty struct {
	value        Value
	writable     bool
	configurable bool
	enumerable   bool
	accessor     bool
	getterFunc   ObjectRef
	setterFunc   ObjectRef
}

// Undefined returns the undefined value.
func Undefined() Value {
	return _undefined
}

// Null returns the null value.
func Null() Value {
	return _null
}

func IsUndefined(v Value) bool {
	return v == _undefined
}

func IsNull(v Value) bool {
	return v == _null
}

// IsObject reports whether v is an object reference.
func IsObject(v Value) bool {
	_, ok := v.(ObjectRef)
	return ok
}

// TypeOf returns the typeof operator result for v. Callable objects are not
// distinguished here since that needs the heap; see Runtime.TypeOf.
func TypeOf(v Value) string {
	return v.typeOf()
}

func intToValue(i int64) Value {
	if i >= -128 && i <= 127 {
		return intCache[i+128]
	}
	return valueInt(i)
}

func floatToValue(f float64) Value {
	if i := int64(f); float64(i) == f && i > -maxInt && i < maxInt {
		if i == 0 && math.Signbit(f) {
			return _negativeZero
		}
		return intToValue(i)
	}
	return valueFloat(f)
}

func stringValue(s string) Value {
	return valueString(s)
}

// ToValue converts a Go value into a Value. Values are passed through; nil
// becomes null. Unsupported types panic.
func ToValue(i interface{}) Value {
	switch i := i.(type) {
	case nil:
		return _null
	case Value:
		return i
	case string:
		return valueString(i)
	case bool:
		if i {
			return valueTrue
		}
		return valueFalse
	case int:
		return intToValue(int64(i))
	case int8:
		return intToValue(int64(i))
	case int16:
		return intToValue(int64(i))
	case int32:
		return intToValue(int64(i))
	case int64:
		return intToValue(i)
	case uint:
		if uint64(i) < maxInt {
			return intToValue(int64(i))
		}
		return valueFloat(float64(i))
	case uint8:
		return intToValue(int64(i))
	case uint16:
		return intToValue(int64(i))
	case uint32:
		return intToValue(int64(i))
	case uint64:
		if i < maxInt {
			return intToValue(int64(i))
		}
		return valueFloat(float64(i))
	case float32:
		return floatToValue(float64(i))
	case float64:
		return floatToValue(i)
	}
	panic(fmt.Sprintf("jscore: cannot convert %T to a Value", i))
}

func (i valueInt) ToBoolean() bool {
	return i != 0
}

func (i valueInt) ToFloat() float64 {
	return float64(int64(i))
}

func (i valueInt) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (i valueInt) SameAs(other Value) bool {
	switch o := other.(type) {
	case valueInt:
		return i == o
	case valueFloat:
		return float64(i) == float64(o) && !(i == 0 && math.Signbit(float64(o)))
	}
	return false
}

func (i valueInt) StrictEquals(other Value) bool {
	switch o := other.(type) {
	case valueInt:
		return i == o
	case valueFloat:
		return float64(i) == float64(o)
	}
	return false
}

func (i valueInt) Export() interface{} {
	return int64(i)
}

func (i valueInt) typeOf() string {
	return "number"
}

func (f valueFloat) ToBoolean() bool {
	return float64(f) != 0.0 && !math.IsNaN(float64(f))
}

func (f valueFloat) ToFloat() float64 {
	return float64(f)
}

var matchLeading0Exponent = regexp.MustCompile(`([eE][+\-])0+([1-9])`) // 1e-07 => 1e-7

func (f valueFloat) String() string {
	return formatNumber(float64(f))
}

func formatNumber(value float64) string {
	if math.IsNaN(value) {
		return "NaN"
	} else if math.IsInf(value, 0) {
		if math.Signbit(value) {
			return "-Infinity"
		}
		return "Infinity"
	} else if value == 0 {
		return "0"
	}
	if abs := math.Abs(value); abs >= 1e21 || abs < 1e-6 {
		return matchLeading0Exponent.ReplaceAllString(strconv.FormatFloat(value, 'g', -1, 64), "$1$2")
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func (f valueFloat) SameAs(other Value) bool {
	switch o := other.(type) {
	case valueFloat:
		this := float64(f)
		o1 := float64(o)
		if math.IsNaN(this) && math.IsNaN(o1) {
			return true
		}
		ret := this == o1
		if ret && this == 0 {
			ret = math.Signbit(this) == math.Signbit(o1)
		}
		return ret
	case valueInt:
		this := float64(f)
		ret := this == float64(o)
		if ret && this == 0 {
			ret = !math.Signbit(this)
		}
		return ret
	}
	return false
}

func (f valueFloat) StrictEquals(other Value) bool {
	switch o := other.(type) {
	case valueFloat:
		return f == o
	case valueInt:
		return float64(f) == float64(o)
	}
	return false
}

func (f valueFloat) Export() interface{} {
	return float64(f)
}

func (f valueFloat) typeOf() string {
	return "number"
}

func (o valueBool) ToBoolean() bool {
	return bool(o)
}

func (o valueBool) ToFloat() float64 {
	if o {
		return 1.0
	}
	return 0
}

func (o valueBool) String() string {
	if o {
		return stringTrue
	}
	return stringFalse
}

func (o valueBool) SameAs(other Value) bool {
	if other, ok := other.(valueBool); ok {
		return o == other
	}
	return false
}

func (o valueBool) StrictEquals(other Value) bool {
	return o.SameAs(other)
}

func (o valueBool) Export() interface{} {
	return bool(o)
}

func (o valueBool) typeOf() string {
	return "boolean"
}

func (s valueString) ToBoolean() bool {
	return len(s) > 0
}

func (s valueString) ToFloat() float64 {
	return stringToNumber(string(s))
}

func (s valueString) String() string {
	return string(s)
}

func (s valueString) SameAs(other Value) bool {
	if other, ok := other.(valueString); ok {
		return s == other
	}
	return false
}

func (s valueString) StrictEquals(other Value) bool {
	return s.SameAs(other)
}

func (s valueString) Export() interface{} {
	return string(s)
}

func (s valueString) typeOf() string {
	return "string"
}

func (n valueNull) ToBoolean() bool {
	return false
}

func (n valueNull) ToFloat() float64 {
	return 0
}

func (n valueNull) String() string {
	return stringNull
}

func (n valueNull) SameAs(other Value) bool {
	_, same := other.(valueNull)
	return same
}

func (n valueNull) StrictEquals(other Value) bool {
	_, same := other.(valueNull)
	return same
}

func (n valueNull) Export() interface{} {
	return nil
}

func (n valueNull) typeOf() string {
	return "object"
}

func (u valueUndefined) ToFloat() float64 {
	return math.NaN()
}

func (u valueUndefined) String() string {
	return stringUndefined
}

func (u valueUndefined) SameAs(other Value) bool {
	_, same := other.(valueUndefined)
	return same
}

func (u valueUndefined) StrictEquals(other Value) bool {
	_, same := other.(valueUndefined)
	return same
}

func (u valueUndefined) typeOf() string {
	return "undefined"
}

func (p *valueProperty) ToBoolean() bool {
	return false
}

func (p *valueProperty) ToFloat() float64 {
	return math.NaN()
}

func (p *valueProperty) String() string {
	return ""
}

func (p *valueProperty) SameAs(other Value) bool {
	if otherProp, ok := other.(*valueProperty); ok {
		return p == otherProp
	}
	return false
}

func (p *valueProperty) StrictEquals(Value) bool {
	return false
}

func (p *valueProperty) Export() interface{} {
	panic("Cannot export valueProperty")
}

func (p *valueProperty) typeOf() string {
	panic("valueProperty has no type")
}

func valueProp(value Value, writable, enumerable, configurable bool) Value {
	if writable && enumerable && configurable {
		return value
	}
	return &valueProperty{
		value:        value,
		writable:     writable,
		enumerable:   enumerable,
		configurable: configurable,
	}
}

func (o ObjectRef) ToBoolean() bool {
	return true
}

func (o ObjectRef) ToFloat() float64 {
	return math.NaN()
}

func (o ObjectRef) String() string {
	return fmt.Sprintf("[object #%d]", uint64(o))
}

func (o ObjectRef) SameAs(other Value) bool {
	if other, ok := other.(ObjectRef); ok {
		return o == other
	}
	return false
}

func (o ObjectRef) StrictEquals(other Value) bool {
	return o.SameAs(other)
}

func (o ObjectRef) Export() interface{} {
	return o
}

func (o ObjectRef) typeOf() string {
	return "object"
}

func (s *Symbol) ToBoolean() bool {
	return true
}

func (s *Symbol) ToFloat() float64 {
	return math.NaN()
}

func (s *Symbol) String() string {
	return s.descString()
}

func (s *Symbol) SameAs(other Value) bool {
	if s1, ok := other.(*Symbol); ok {
		return s == s1
	}
	return false
}

func (s *Symbol) StrictEquals(o Value) bool {
	return s.SameAs(o)
}

func (s *Symbol) Export() interface{} {
	return s
}

func (s *Symbol) typeOf() string {
	return "symbol"
}

func stringToNumber(s string) float64 {
	s = trimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if n, err := strconv.ParseUint(s[2:], base, 64); err == nil {
				return float64(n)
			}
			return math.NaN()
		}
	}
	for i := 0; i < len(s); i++ {
		// ParseFloat accepts forms such as "inf", "nan" and "0x1p-2" that
		// are not numeric literals here.
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func isSpace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0xA0, 0xFEFF, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000:
		return true
	}
	return c >= 0x2000 && c <= 0x200A
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end {
		r, size := utf8.DecodeRuneInString(s[start:])
		if !isSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if !isSpace(r) {
			break
		}
		end -= size
	}
	return s[start:end]
}

func init() {
	for i := 0; i < 256; i++ {
		intCache[i] = valueInt(i - 128)
	}
	_positiveZero = intToValue(0)
}
