package ltc

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewUserBits(t *testing.T) {
	tests := []struct {
		name      string
		fields    []int
		want      [8]uint8
		wantField int
	}{
		{name: "empty"},
		{name: "partial", fields: []int{5, 15}, want: [8]uint8{5, 15}},
		{name: "full", fields: []int{1, 2, 3, 4, 5, 6, 7, 8}, want: [8]uint8{1, 2, 3, 4, 5, 6, 7, 8}},
		{name: "tooLarge", fields: []int{0, 0, 16}, wantField: 3},
		{name: "negative", fields: []int{-1}, wantField: 1},
		{name: "tooMany", fields: make([]int, 9), wantField: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ub, err := NewUserBits(tt.fields...)
			var rerr *UserBitsFieldRangeError
			if tt.wantField != 0 {
				if !errors.As(err, &rerr) || rerr.Field != tt.wantField {
					t.Fatalf("NewUserBits() error = %v, want field %d", err, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewUserBits() error = %v", err)
			}
			if ub.Fields() != tt.want {
				t.Errorf("Fields() = %v, want %v", ub.Fields(), tt.want)
			}
		})
	}
}

func TestUserBitsGroups(t *testing.T) {
	groups := [4]uint8{0x12, 0x34, 0x89, 0xAB}
	ub := UserBitsFromGroups(groups)
	if want := [8]uint8{2, 1, 4, 3, 9, 8, 0xB, 0xA}; ub.Fields() != want {
		t.Errorf("Fields() = %v, want %v", ub.Fields(), want)
	}
	if ub.Groups() != groups {
		t.Errorf("Groups() = %v, want %v", ub.Groups(), groups)
	}
	if ub.Uint32() != 0xAB893412 {
		t.Errorf("Uint32() = %08X", ub.Uint32())
	}
}

func TestUserBitsWith(t *testing.T) {
	var zero UserBits
	ub, err := zero.With(8, 9)
	if err != nil {
		t.Fatal(err)
	}
	if ub.Field(8) != 9 || zero.Field(8) != 0 {
		t.Errorf("With() changed the receiver or did not set the field: %v %v", zero, ub)
	}
	if _, err := zero.With(0, 1); err == nil {
		t.Error("With(0, 1) did not fail")
	}
	if _, err := zero.With(1, 16); err == nil {
		t.Error("With(1, 16) did not fail")
	}
}

func TestUserBitsJSON(t *testing.T) {
	ub, _ := NewUserBits(1, 0, 0, 0, 0, 0, 0, 15)
	data, err := json.Marshal(ub)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[1,0,0,0,0,0,0,15]" {
		t.Errorf("Marshal() = %s", data)
	}
	var back UserBits
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != ub {
		t.Errorf("Unmarshal() = %v, want %v", back, ub)
	}
	if err := json.Unmarshal([]byte("[20]"), &back); err == nil {
		t.Error("Unmarshal([20]) did not fail")
	}
}
