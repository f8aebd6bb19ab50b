// Copyright 2025 The kern32 Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bits

import (
	"reflect"
	"testing"
)

func TestMask64(t *testing.T) {
	for _, tc := range []struct {
		idxs []int
		want uint64
	}{
		{nil, 0},
		{[]int{0}, 0x1},
		{[]int{0, 1}, 0x3},
		{[]int{16, 17}, 0x30000},
		{[]int{0, 63}, 0x8000000000000001},
	} {
		if got := Mask64(tc.idxs...); got != tc.want {
			t.Errorf("Mask64(%v) = %#x, want %#x", tc.idxs, got, tc.want)
		}
	}
}

func TestIsOn64(t *testing.T) {
	if !IsOn64(0xf, 0x5) {
		t.Error("IsOn64(0xf, 0x5) = false, want true")
	}
	if IsOn64(0x1, 0x3) {
		t.Error("IsOn64(0x1, 0x3) = true, want false")
	}
	if !IsAnyOn64(0x1, 0x3) {
		t.Error("IsAnyOn64(0x1, 0x3) = false, want true")
	}
	if IsAnyOn64(0x1, 0x2) {
		t.Error("IsAnyOn64(0x1, 0x2) = true, want false")
	}
}

func TestForEachSetBit64(t *testing.T) {
	for _, mask := range []uint64{0, 0x1, 0x5, 0x30000, 0x8000000000000001} {
		var got []int
		ForEachSetBit64(mask, func(i int) {
			got = append(got, i)
		})
		var want []int
		for i := 0; i < 64; i++ {
			if mask&MaskOf64(i) != 0 {
				want = append(want, i)
			}
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ForEachSetBit64(%#x) visited %v, want %v", mask, got, want)
		}
	}
}
