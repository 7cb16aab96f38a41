package decoder

import (
	"testing"

	"github.com/Time0o/TUD-channel-coding/ctrlmat"
)

// testCode returns the (15,7) cyclic code used throughout the testable
// property scenarios: H row polynomial exponents {0,4,6,7,8}, d_min=5.
func testCode(t *testing.T) *ctrlmat.CtrlMat {
	t.Helper()
	cm, err := ctrlmat.Parse("15 7 5 : 8 7 6 4 0 ortho")
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	return cm
}

func allKinds() []Kind {
	return []Kind{
		BF, WBF, MWBF, IMWBF,
		OneStepMLGKind, HardMLGKind, SoftMLGKind, AdaptiveSoftMLG,
		MinSumKind, NormalizedMinSum, OffsetMinSum,
	}
}

func buildIrregularMatrix() *ctrlmat.CtrlMat {
	return ctrlmat.NewFromRows(6, [][]int{
		{0, 1, 2},
		{0, 1, 2, 3, 4},
		{2, 3, 4, 5},
	})
}

// zeros returns the noiseless channel samples of the all-zero codeword:
// +1.0 in every position, which hard-decides to bit 0.
func zeros(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0
	}
	return out
}

func TestAllPositiveInput(t *testing.T) {
	cm := testCode(t)
	in := zeros(cm.Length())

	for _, kind := range allKinds() {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			d, err := New(kind, cm, 50, 1.25)
			if err != nil {
				t.Fatalf("expected no error but found: %v", err)
			}
			success, out := d.Decode(in)
			if !success {
				t.Fatalf("expected success")
			}
			for j, v := range out {
				if v != 0 {
					t.Fatalf("expected an all-zero codeword but found out[%d]=%d", j, v)
				}
			}
		})
	}
}

func TestSingleBitFlippedStrong(t *testing.T) {
	cm := testCode(t)

	cases := []struct {
		kind  Kind
		alpha float64
	}{
		{BF, 0}, {WBF, 0}, {MWBF, 0.5}, {IMWBF, 0.5},
		{OneStepMLGKind, 0}, {HardMLGKind, 0}, {SoftMLGKind, 0}, {AdaptiveSoftMLG, 0.5},
		{MinSumKind, 0}, {NormalizedMinSum, 1.25}, {OffsetMinSum, 0.15},
	}

	for _, c := range cases {
		c := c
		t.Run(string(c.kind), func(t *testing.T) {
			in := zeros(cm.Length())
			in[3] = -0.9

			d, err := New(c.kind, cm, 50, c.alpha)
			if err != nil {
				t.Fatalf("expected no error but found: %v", err)
			}
			success, out := d.Decode(in)
			if !success {
				t.Fatalf("expected success")
			}
			for j, v := range out {
				if v != 0 {
					t.Fatalf("expected an all-zero codeword but found out[%d]=%d", j, v)
				}
			}
		})
	}
}

func TestTwoErrorsWeakReliability(t *testing.T) {
	cm := testCode(t)
	if cm.DMin() < 5 {
		t.Fatalf("test code must have d_min >= 5")
	}

	for _, kind := range allKinds() {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			in := make([]float64, cm.Length())
			for i := range in {
				in[i] = 0.2
			}
			in[3] = -0.15
			in[9] = -0.15

			d, err := New(kind, cm, 50, 1.25)
			if err != nil {
				t.Fatalf("expected no error but found: %v", err)
			}
			success, out := d.Decode(in)
			if !success {
				t.Fatalf("expected success")
			}
			for j, v := range out {
				if v != 0 {
					t.Fatalf("expected an all-zero codeword but found out[%d]=%d", j, v)
				}
			}
		})
	}
}

func TestSuccessFlagMatchesSyndrome(t *testing.T) {
	cm := testCode(t)

	in := make([]float64, cm.Length())
	for i := range in {
		in[i] = 1.0
	}
	for i := 0; i < 6; i++ {
		in[i] = -1.0
	}

	for _, kind := range allKinds() {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			d, err := New(kind, cm, 50, 1.25)
			if err != nil {
				t.Fatalf("expected no error but found: %v", err)
			}
			success, out := d.Decode(in)
			isCodeword := ctrlmat.IsZero(cm.Syndrome(out))
			if kind == OneStepMLGKind {
				// OneStepMLG's flag is an unconditional "ran", not "converged".
				if !success {
					t.Fatalf("expected OneStepMLG's flag to always be true")
				}
				return
			}
			if success != isCodeword {
				t.Fatalf("success flag (%v) disagrees with syndrome check (codeword=%v)", success, isCodeword)
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	cm := testCode(t)

	in := make([]float64, cm.Length())
	for i := range in {
		in[i] = 0.2
	}
	in[3] = -0.15
	in[9] = -0.15

	for _, kind := range allKinds() {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			d1, _ := New(kind, cm, 50, 1.25)
			d2, _ := New(kind, cm, 50, 1.25)

			success1, out1 := d1.Decode(in)
			success2, out2 := d2.Decode(in)

			if success1 != success2 {
				t.Fatalf("expected identical success flags but found %v and %v", success1, success2)
			}
			for j := range out1 {
				if out1[j] != out2[j] {
					t.Fatalf("expected byte-identical output but found out1[%d]=%d out2[%d]=%d", j, out1[j], j, out2[j])
				}
			}
		})
	}
}

func TestOneStepMLGAlwaysSucceeds(t *testing.T) {
	cm := testCode(t)
	d, err := NewOneStep(cm)
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}

	in := make([]float64, cm.Length())
	for i := range in {
		in[i] = 1.0
	}
	for i := 0; i < 6; i++ {
		in[i] = -1.0
	}

	success, _ := d.Decode(in)
	if !success {
		t.Fatalf("expected OneStepMLG to always report success")
	}
}

func TestUnknownKindRejected(t *testing.T) {
	cm := testCode(t)
	if _, err := New(Kind("not-a-real-decoder"), cm, 50, 0); err == nil {
		t.Fatalf("expected an error for an unknown decoder kind")
	}
}

func TestMaxIterZero(t *testing.T) {
	cm := testCode(t)

	// the hard decision is already a codeword -> success with zero iterations,
	// for every decoder kind, not just Min-Sum: the pre-loop syndrome check
	// must run even when max_iter==0.
	for _, kind := range allKinds() {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			in := zeros(cm.Length())
			d, err := New(kind, cm, 0, 0)
			if err != nil {
				t.Fatalf("expected no error but found: %v", err)
			}
			success, out := d.Decode(in)
			if !success {
				t.Fatalf("expected success when the hard decision is already a codeword")
			}
			for j, v := range out {
				if v != 0 {
					t.Fatalf("expected an all-zero codeword but found out[%d]=%d", j, v)
				}
			}
		})
	}

	// the hard decision is not a codeword -> failure, budget exhausted immediately
	in2 := zeros(cm.Length())
	in2[3] = -0.9
	d2, _ := New(BF, cm, 0, 0)
	success2, out2 := d2.Decode(in2)
	if success2 {
		t.Fatalf("expected failure with max_iter=0 on a non-codeword hard decision")
	}
	if out2[3] != 1 {
		t.Fatalf("expected the last-iterate hard decision to be preserved")
	}

	d3, _ := New(HardMLGKind, cm, 0, 0)
	success3, out3 := d3.Decode(in2)
	if success3 {
		t.Fatalf("expected failure with max_iter=0 on a non-codeword hard decision")
	}
	if out3[3] != 1 {
		t.Fatalf("expected the last-iterate hard decision to be preserved")
	}
}
