package decoder

import (
	"fmt"
	"math"

	"github.com/Time0o/TUD-channel-coding/ctrlmat"
	"gonum.org/v1/gonum/mat"
)

// MinSumDecoder implements MinSum, NormalizedMinSum, and OffsetMinSum behind
// a single two-phase variable/check message-passing routine. Normalized and
// Offset are mutually exclusive scaling modes; both set is a configuration
// error.
type MinSumDecoder struct {
	H       *ctrlmat.CtrlMat
	MaxIter int

	Normalized bool
	Offset     bool
	Alpha      float64
}

// NewMinSum validates that Normalized and Offset are not both set, returning
// a configured MinSumDecoder or a configuration error.
func NewMinSum(H *ctrlmat.CtrlMat, maxIter int, normalized, offset bool, alpha float64) (*MinSumDecoder, error) {
	if normalized && offset {
		return nil, fmt.Errorf("decoder: normalized and offset min-sum semantics are mutually exclusive")
	}
	return &MinSumDecoder{H: H, MaxIter: maxIter, Normalized: normalized, Offset: offset, Alpha: alpha}, nil
}

func (d *MinSumDecoder) Decode(in []float64) (success bool, out []int) {
	n := d.H.Length()
	k := d.H.Checks()
	if len(in) != n {
		panic(fmt.Sprintf("decoder: input length %d != n (%d)", len(in), n))
	}

	out = hardDecision(in)
	if ctrlmat.IsZero(d.H.Syndrome(out)) {
		return true, out
	}

	// Q and R are indexed (i,j) with j in K[i]; entries outside the
	// sparsity pattern are simply never read, so a dense zero-initialized
	// matrix serves in place of the original's NaN debug markers.
	Q := mat.NewDense(k, n, nil)
	R := mat.NewDense(k, n, nil)
	for i := 0; i < k; i++ {
		for _, j := range d.H.Row(i) {
			Q.Set(i, j, in[j])
		}
	}

	min1 := make([]float64, k)
	min2 := make([]float64, k)
	sgn := make([]int, k)

	for iter := 0; iter < d.MaxIter; iter++ {
		for i := 0; i < k; i++ {
			m1, m2, sign := math.MaxFloat64, math.MaxFloat64, 0
			for _, j := range d.H.Row(i) {
				q := Q.At(i, j)
				qAbs := math.Abs(q)
				if qAbs < m1 {
					m2 = m1
					m1 = qAbs
				} else if qAbs < m2 {
					m2 = qAbs
				}
				if q < 0 {
					sign ^= 1
				}
			}
			min1[i], min2[i], sgn[i] = m1, m2, sign
		}

		for i := 0; i < k; i++ {
			for _, j := range d.H.Row(i) {
				q := Q.At(i, j)
				r := min2[i]
				if math.Abs(q) != min1[i] {
					r = min1[i]
				}

				sigma := sgn[i]
				if q < 0 {
					sigma ^= 1
				}

				var mag float64
				switch {
				case d.Normalized:
					mag = (1.0 / d.Alpha) * r
				case d.Offset:
					mag = math.Max(r-d.Alpha, 0)
				default:
					mag = r
				}

				if sigma == 1 {
					mag = -mag
				}
				R.Set(i, j, mag)
			}
		}

		for j := 0; j < n; j++ {
			extrinsic := 0.0
			for _, i := range d.H.Column(j) {
				extrinsic += R.At(i, j)
			}

			if in[j]+extrinsic < 0 {
				out[j] = 1
			} else {
				out[j] = 0
			}

			for _, i := range d.H.Column(j) {
				Q.Set(i, j, in[j]+extrinsic-R.At(i, j))
			}
		}

		if ctrlmat.IsZero(d.H.Syndrome(out)) {
			return true, out
		}
	}

	return false, out
}
