package ir

import "strings"

// Component selects one lane of a 4-component register.
type Component uint8

const (
	CompX Component = iota
	CompY
	CompZ
	CompW
)

const componentLetters = "xyzw"

// String returns the component letter.
func (c Component) String() string {
	if c > CompW {
		return "?"
	}
	return componentLetters[c : c+1]
}

// WriteMask selects the components written by a destination operand.
type WriteMask uint8

const (
	WriteMaskNone WriteMask = 0
	WriteMaskX    WriteMask = 1 << CompX
	WriteMaskY    WriteMask = 1 << CompY
	WriteMaskZ    WriteMask = 1 << CompZ
	WriteMaskW    WriteMask = 1 << CompW
	WriteMaskXYZW           = WriteMaskX | WriteMaskY | WriteMaskZ | WriteMaskW
)

// Has reports whether the mask contains component c.
func (m WriteMask) Has(c Component) bool {
	return m&(1<<c) != 0
}

// Count returns the number of components in the mask.
func (m WriteMask) Count() int {
	n := 0
	for c := CompX; c <= CompW; c++ {
		if m.Has(c) {
			n++
		}
	}
	return n
}

// String returns the mask letters, e.g. "xz".
func (m WriteMask) String() string {
	var sb strings.Builder
	for c := CompX; c <= CompW; c++ {
		if m.Has(c) {
			sb.WriteByte(componentLetters[c])
		}
	}
	return sb.String()
}

// Swizzle selects, for each of the four result lanes, the source component
// it reads. Lane i is stored in bits 2i..2i+1.
type Swizzle uint8

// SwizzleXYZW is the identity swizzle.
const SwizzleXYZW Swizzle = 0 | 1<<2 | 2<<4 | 3<<6

// MakeSwizzle builds a swizzle from four component selectors.
func MakeSwizzle(x, y, z, w Component) Swizzle {
	return Swizzle(x&3) | Swizzle(y&3)<<2 | Swizzle(z&3)<<4 | Swizzle(w&3)<<6
}

// Get returns the component read by lane i.
func (s Swizzle) Get(i int) Component {
	return Component(s>>(2*uint(i))) & 3
}

// Set returns a copy of s with lane i reading component c.
func (s Swizzle) Set(i int, c Component) Swizzle {
	shift := 2 * uint(i)
	return s&^(3<<shift) | Swizzle(c&3)<<shift
}

// ReadMask returns the set of components read through the swizzle.
func (s Swizzle) ReadMask() WriteMask {
	var m WriteMask
	for i := 0; i < 4; i++ {
		m |= 1 << s.Get(i)
	}
	return m
}

// String returns the four swizzle letters, e.g. "xyxy".
func (s Swizzle) String() string {
	var b [4]byte
	for i := 0; i < 4; i++ {
		b[i] = componentLetters[s.Get(i)]
	}
	return string(b[:])
}

// ParseComponent converts a component letter to a Component.
func ParseComponent(r byte) (Component, bool) {
	switch r {
	case 'x', 'r':
		return CompX, true
	case 'y', 'g':
		return CompY, true
	case 'z', 'b':
		return CompZ, true
	case 'w', 'a':
		return CompW, true
	}
	return 0, false
}
