package canon

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := NewEncoder().String("alpha").U64(7).Bytes()
	b := NewEncoder().String("alpha").U64(7).Bytes()
	if Hash(a) != Hash(b) {
		t.Fatalf("expected identical hashes for identical byte images")
	}
}

func TestSortedStringsIndependentOfInputOrder(t *testing.T) {
	a := NewEncoder().SortedStrings([]string{"z", "a", "m"}).Bytes()
	b := NewEncoder().SortedStrings([]string{"m", "z", "a"}).Bytes()
	if string(a) != string(b) {
		t.Fatalf("SortedStrings output depends on input order")
	}
}

func TestLengthPrefixDisambiguatesAdjacentFields(t *testing.T) {
	// "ab"+"c" must not collide with "a"+"bc": VarBytes length-prefixes
	// each field so concatenation can't blur the boundary.
	a := NewEncoder().String("ab").String("c").Bytes()
	b := NewEncoder().String("a").String("bc").Bytes()
	if string(a) == string(b) {
		t.Fatalf("expected distinct canonical bytes for differently split strings")
	}
}

func TestU128DistinguishesHiFromLo(t *testing.T) {
	a := NewEncoder().U128(1, 2).Bytes()
	b := NewEncoder().U128(2, 1).Bytes()
	if string(a) == string(b) {
		t.Fatalf("U128 must not be symmetric in hi/lo")
	}
}

func TestFixedDoesNotLengthPrefix(t *testing.T) {
	e := NewEncoder()
	e.Fixed([]byte{1, 2, 3})
	if len(e.Bytes()) != 3 {
		t.Fatalf("expected exactly 3 raw bytes, got %d", len(e.Bytes()))
	}
}
