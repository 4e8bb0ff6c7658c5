package customrange

import "testing"

type stepInt int

func (a stepInt) Compare(b stepInt) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
func (a stepInt) Succ() stepInt {
	if a == 1<<30 {
		return a
	}
	return a + 1
}
func (a stepInt) Pred() stepInt {
	if a == -(1 << 30) {
		return a
	}
	return a - 1
}

func TestRangeLenAndCursor(t *testing.T) {
	r := New(stepInt(0), stepInt(5))
	if r.Len() != 5 {
		t.Fatalf("Len = %d, want 5", r.Len())
	}

	cur := r.Cursor()
	var got []stepInt
	for {
		v, ok := cur.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	want := []stepInt{0, 1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRangeEmpty(t *testing.T) {
	r := New(stepInt(5), stepInt(5))
	if !r.Empty() {
		t.Errorf("expected empty range")
	}
	if _, ok := r.Cursor().Next(); ok {
		t.Errorf("expected no values from empty range")
	}
}

func TestRangeReversedIsEmpty(t *testing.T) {
	r := New(stepInt(5), stepInt(0))
	if !r.Empty() {
		t.Errorf("reversed range should be treated as empty")
	}
}
