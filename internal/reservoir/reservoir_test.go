// Copyright 2017 Hajime Hoshi
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

package reservoir_test

import (
	"testing"

	"github.com/corvidae-audio/mp3dec/internal/consts"
	"github.com/corvidae-audio/mp3dec/internal/reservoir"
)

func TestAssembleNoBacklog(t *testing.T) {
	r := reservoir.New()
	b, err := r.Assemble(0, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.GetBits(24); got != 0x010203 {
		t.Fatalf("got %#x, want %#x", got, 0x010203)
	}
}

func TestAssembleUnderflowOnFirstFrame(t *testing.T) {
	r := reservoir.New()
	_, err := r.Assemble(4, []byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected an underflow error")
	}
	se, ok := err.(*consts.StageError)
	if !ok || se.Code != consts.ErrMaindataUnderflow {
		t.Fatalf("got %v, want StageError with ErrMaindataUnderflow", err)
	}
}

func TestAssembleBorrowsBacklog(t *testing.T) {
	r := reservoir.New()
	if _, err := r.Assemble(0, []byte{0xaa, 0xbb}); err != nil {
		t.Fatalf("priming frame: %v", err)
	}
	b, err := r.Assemble(1, []byte{0xcc, 0xdd})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint32{0xbb, 0xcc, 0xdd}
	for _, w := range want {
		if got := b.GetBits(8); got != w {
			t.Fatalf("got %#x, want %#x", got, w)
		}
	}
}

func TestSelfContainedRejectsNonzeroMainDataBegin(t *testing.T) {
	r := reservoir.New()
	r.SetSelfContained(true)
	if !r.SelfContained() {
		t.Fatal("SelfContained should report true after SetSelfContained(true)")
	}
	if _, err := r.Assemble(2, []byte{1, 2}); err == nil {
		t.Fatal("expected an error for nonzero main_data_begin in self-contained mode")
	}
	b, err := r.Assemble(0, []byte{0x42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.GetBits(8); got != 0x42 {
		t.Fatalf("got %#x, want 0x42", got)
	}
}

func TestResetDiscardsBacklog(t *testing.T) {
	r := reservoir.New()
	if _, err := r.Assemble(0, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("priming frame: %v", err)
	}
	r.Reset()
	if _, err := r.Assemble(1, nil); err == nil {
		t.Fatal("expected underflow after Reset discarded the backlog")
	}
}
