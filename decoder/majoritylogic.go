package decoder

import (
	"fmt"
	"math"

	"github.com/Time0o/TUD-channel-coding/ctrlmat"
	"gonum.org/v1/gonum/mat"
)

// mlgRegisterWidth is x in spec.md: the reliability-register bit-width
// parameter used to derive the soft saturation bounds [-3, 3].
const mlgRegisterWidth = 3

// OneStep implements the one-step Majority-Logic corrector: a single,
// non-iterative hard-decision-then-correct pass. It requires a regular
// control matrix (the correction threshold is floor(gamma/2)).
type OneStep struct {
	H *ctrlmat.CtrlMat
}

// NewOneStep validates regularity and returns a configured OneStep.
func NewOneStep(H *ctrlmat.CtrlMat) (*OneStep, error) {
	if !H.Regular() {
		return nil, fmt.Errorf("decoder: one-step-mlg requires a regular control matrix")
	}
	return &OneStep{H: H}, nil
}

// Decode always reports success: a one-step corrector never retries, so the
// flag only ever means "the pass ran", not "the result is a codeword".
func (o *OneStep) Decode(in []float64) (success bool, out []int) {
	n := o.H.Length()
	if len(in) != n {
		panic(fmt.Sprintf("decoder: input length %d != n (%d)", len(in), n))
	}

	out = hardDecision(in)
	s := o.H.Syndrome(out)
	gammaHalf := o.H.RowWeight() / 2

	for j := 0; j < n; j++ {
		sum := 0
		for _, i := range o.H.Column(j) {
			sum += s[i]
		}
		if sum > gammaHalf {
			out[j] ^= 1
		}
	}

	return true, out
}

// MajorityLogic implements HardMLG, SoftMLG, and AdaptiveSoftMLG behind a
// single routine parameterized by Soft (use a saturating soft reliability
// register instead of hard +/-gamma) and Adaptive (weight each check's
// contribution by a per-edge minimum reliability, gained with Alpha).
// Constraint: Adaptive requires Soft. Requires a regular control matrix.
type MajorityLogic struct {
	H       *ctrlmat.CtrlMat
	MaxIter int

	Soft     bool
	Adaptive bool
	Alpha    float64
}

// NewMajorityLogic validates the flag combination and regularity, returning
// a configured MajorityLogic or a configuration error.
func NewMajorityLogic(H *ctrlmat.CtrlMat, maxIter int, soft, adaptive bool, alpha float64) (*MajorityLogic, error) {
	if adaptive && !soft {
		return nil, fmt.Errorf("decoder: adaptive-soft-mlg requires soft")
	}
	if !H.Regular() {
		return nil, fmt.Errorf("decoder: majority-logic decoding requires a regular control matrix")
	}
	return &MajorityLogic{H: H, MaxIter: maxIter, Soft: soft, Adaptive: adaptive, Alpha: alpha}, nil
}

func (m *MajorityLogic) Decode(in []float64) (success bool, out []int) {
	n := m.H.Length()
	if len(in) != n {
		panic(fmt.Sprintf("decoder: input length %d != n (%d)", len(in), n))
	}

	var max float64
	if m.Soft {
		max = float64((1 << (mlgRegisterWidth - 1)) - 1) // 3
	} else {
		max = float64(m.H.RowWeight())
	}
	min := -max

	out = hardDecision(in)

	r := make([]float64, n)
	for j := 0; j < n; j++ {
		if m.Soft {
			r[j] = clamp(math.Round(in[j]*max), min, max)
		} else if out[j] == 0 {
			r[j] = max
		} else {
			r[j] = min
		}
	}

	// adaptive-soft MLG's per-edge weight: the minimum reliability among a
	// check's other edges, computed once before the iteration loop starts.
	// The original source computes this minimum (wij_min) but then discards
	// it in favor of the saturation floor -- a defect documented in
	// DESIGN.md. This implementation stores the computed minimum instead.
	var edgeWeight *mat.Dense
	if m.Adaptive {
		edgeWeight = mat.NewDense(m.H.Checks(), n, nil)
		for i := 0; i < m.H.Checks(); i++ {
			row := m.H.Row(i)
			for _, j := range row {
				wijMin := math.MaxFloat64
				for _, jp := range row {
					if jp == j {
						continue
					}
					if v := math.Abs(r[jp]); v < wijMin {
						wijMin = v
					}
				}
				edgeWeight.Set(i, j, wijMin)
			}
		}
	}

	if ctrlmat.IsZero(m.H.Syndrome(out)) {
		return true, out
	}

	for iter := 0; iter < m.MaxIter; iter++ {
		s := m.H.Syndrome(out)

		e := make([]float64, n)
		for j := 0; j < n; j++ {
			sum := 0.0
			for _, i := range m.H.Column(j) {
				bit := float64(2*(s[i]^out[j]) - 1)
				if m.Adaptive {
					sum += bit * edgeWeight.At(i, j)
				} else {
					sum += bit
				}
			}
			e[j] = sum
		}

		for j := 0; j < n; j++ {
			if m.Adaptive {
				r[j] = clamp(r[j]-m.Alpha*e[j], min, max)
			} else {
				r[j] = clamp(r[j]-e[j], min, max)
			}
			if r[j] < 0 {
				out[j] = 1
			} else {
				out[j] = 0
			}
		}

		if ctrlmat.IsZero(m.H.Syndrome(out)) {
			return true, out
		}
	}

	return false, out
}
