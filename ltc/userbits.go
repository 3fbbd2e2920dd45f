package ltc

import (
	"encoding/json"
	"fmt"
)

const userBitsFields = 8

// UserBits holds the eight 4-bit user bits fields of a frame. The zero
// value has every field cleared. Values are validated on construction
// and never mutated; With returns a modified copy.
type UserBits struct {
	f [userBitsFields]uint8
}

// NewUserBits returns user bits with field1, field2, ... set from fields
// in order. Fields not supplied are zero.
func NewUserBits(fields ...int) (UserBits, error) {
	var u UserBits
	if len(fields) > userBitsFields {
		return u, &UserBitsFieldRangeError{Field: len(fields)}
	}
	for i, v := range fields {
		if v < 0 || v > 0xf {
			return UserBits{}, &UserBitsFieldRangeError{Field: i + 1, Value: v}
		}
		u.f[i] = uint8(v)
	}
	return u, nil
}

// UserBitsFromGroups splits four bytes into nibbles: byte g supplies
// field 2g+1 from its low nibble and field 2g+2 from its high nibble.
func UserBitsFromGroups(groups [4]uint8) UserBits {
	var u UserBits
	for g, b := range groups {
		u.f[2*g] = b & 0xf
		u.f[2*g+1] = b >> 4
	}
	return u
}

// Field returns field n, numbered 1 through 8. Out of range fields
// read as zero.
func (u UserBits) Field(n int) uint8 {
	if n < 1 || n > userBitsFields {
		return 0
	}
	return u.f[n-1]
}

// With returns a copy of u with field n set to v
func (u UserBits) With(n, v int) (UserBits, error) {
	if n < 1 || n > userBitsFields || v < 0 || v > 0xf {
		return u, &UserBitsFieldRangeError{Field: n, Value: v}
	}
	u.f[n-1] = uint8(v)
	return u, nil
}

// Fields returns field1 through field8
func (u UserBits) Fields() [userBitsFields]uint8 {
	return u.f
}

// Groups is the inverse of UserBitsFromGroups
func (u UserBits) Groups() (g [4]uint8) {
	for i := range g {
		g[i] = u.f[2*i] | u.f[2*i+1]<<4
	}
	return g
}

// Uint32 returns the user bits in transmission order, field1 in the
// least significant nibble
func (u UserBits) Uint32() (v uint32) {
	for i := userBitsFields - 1; i >= 0; i-- {
		v = v<<4 | uint32(u.f[i])
	}
	return v
}

func (u UserBits) String() string {
	return fmt.Sprintf("%08X", u.Uint32())
}

func (u UserBits) MarshalJSON() ([]byte, error) {
	var a [userBitsFields]int
	for i, v := range u.f {
		a[i] = int(v)
	}
	return json.Marshal(a)
}

func (u *UserBits) UnmarshalJSON(p []byte) error {
	var a []int
	if err := json.Unmarshal(p, &a); err != nil {
		return err
	}
	v, err := NewUserBits(a...)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
