package decoder

import (
	"fmt"
	"math"

	"github.com/Time0o/TUD-channel-coding/ctrlmat"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// flipEpsilon is the tie-break tolerance weighted bit-flipping variants use
// when comparing e[j] against the iteration's maximum; BF itself compares
// its integer-valued e[j] exactly.
const flipEpsilon = 1e-3

// BitFlipper implements the BF/WBF/MWBF/IMWBF family behind a single
// straight-line routine parameterized by the flags meaningful to it:
// Weighted selects WBF-style per-check reliability weights, Modified adds
// the -alpha*|in[j]| term, and Improved switches to IMWBF's per-edge
// weights. Constraints: Modified requires Weighted; Improved requires both.
type BitFlipper struct {
	H       *ctrlmat.CtrlMat
	MaxIter int

	Weighted bool
	Modified bool
	Improved bool
	Alpha    float64
}

// NewBitFlipper validates the flag combination and returns a configured
// BitFlipper, or a configuration error if Modified/Improved are set without
// their required companions.
func NewBitFlipper(H *ctrlmat.CtrlMat, maxIter int, weighted, modified, improved bool, alpha float64) (*BitFlipper, error) {
	if modified && !weighted {
		return nil, fmt.Errorf("decoder: modified bit-flipping requires weighted")
	}
	if improved && !(modified && weighted) {
		return nil, fmt.Errorf("decoder: improved bit-flipping requires modified and weighted")
	}
	return &BitFlipper{
		H:        H,
		MaxIter:  maxIter,
		Weighted: weighted,
		Modified: modified,
		Improved: improved,
		Alpha:    alpha,
	}, nil
}

func (b *BitFlipper) Decode(in []float64) (success bool, out []int) {
	n := b.H.Length()
	if len(in) != n {
		panic(fmt.Sprintf("decoder: input length %d != n (%d)", len(in), n))
	}

	out = hardDecision(in)
	if ctrlmat.IsZero(b.H.Syndrome(out)) {
		return true, out
	}

	var checkWeight []float64 // w[i], WBF/MWBF
	var edgeWeight *mat.Dense // w[i,j], IMWBF
	var lastFlipSet []int     // oscillation guard: same flip set twice in a row means stuck

	for iter := 0; iter < b.MaxIter; iter++ {
		s := b.H.Syndrome(out)

		if iter == 0 {
			switch {
			case b.Improved:
				edgeWeight = mat.NewDense(b.H.Checks(), n, nil)
				for i := 0; i < b.H.Checks(); i++ {
					row := b.H.Row(i)
					for _, j := range row {
						min := math.MaxFloat64
						for _, jp := range row {
							if jp == j {
								continue
							}
							if v := math.Abs(in[jp]); v < min {
								min = v
							}
						}
						edgeWeight.Set(i, j, min)
					}
				}
			case b.Weighted:
				checkWeight = make([]float64, b.H.Checks())
				for i := 0; i < b.H.Checks(); i++ {
					min := math.MaxFloat64
					for _, j := range b.H.Row(i) {
						if v := math.Abs(in[j]); v < min {
							min = v
						}
					}
					checkWeight[i] = min
				}
			}
		}

		e := make([]float64, n)
		for j := 0; j < n; j++ {
			if b.Modified {
				e[j] = -b.Alpha * math.Abs(in[j])
			}
			for _, i := range b.H.Column(j) {
				sign := float64(2*s[i] - 1)
				switch {
				case b.Improved:
					e[j] += sign * edgeWeight.At(i, j)
				case b.Weighted:
					e[j] += sign * checkWeight[i]
				default:
					e[j] += float64(s[i])
				}
			}
		}

		maxE := e[0]
		for _, v := range e[1:] {
			if v > maxE {
				maxE = v
			}
		}

		flipSet := make([]int, 0)
		for j, v := range e {
			if b.Weighted {
				if math.Abs(v-maxE) < flipEpsilon {
					flipSet = append(flipSet, j)
				}
			} else if v == maxE {
				flipSet = append(flipSet, j)
			}
		}

		if slices.Equal(flipSet, lastFlipSet) {
			break
		}
		lastFlipSet = flipSet

		for _, j := range flipSet {
			out[j] ^= 1
		}

		if ctrlmat.IsZero(b.H.Syndrome(out)) {
			return true, out
		}
	}

	return false, out
}
