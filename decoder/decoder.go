// Package decoder implements the eleven LDPC decoder variants that consume a
// shared ctrlmat.CtrlMat: the Bit-Flipping family (BF/WBF/MWBF/IMWBF), the
// Majority-Logic family (OneStepMLG/HardMLG/SoftMLG/AdaptiveSoftMLG), and
// the Min-Sum family (MinSum/NormalizedMinSum/OffsetMinSum).
//
// Every iterative decoder in this package walks the same state machine:
//
//	Init -> Iterating(1)
//	Iterating(k) -> Converged        when the syndrome is all zero (terminal, success)
//	Iterating(k) -> Iterating(k+1)   while k < MaxIter
//	Iterating(MaxIter) -> Exhausted  terminal, failure
//
// The states are not materialized as a type; each Decode loop is the state
// machine, with the for-loop counter as k and an early return for Converged.
// BitFlipper also reaches Exhausted before MaxIter when an iteration would
// flip the same set of bits as the one before it, since that flip would only
// restore the previous, non-codeword state.
package decoder

import (
	"fmt"

	"github.com/Time0o/TUD-channel-coding/ctrlmat"
	"github.com/sirupsen/logrus"
)

// Kind names a decoder variant, matching the factory interface's recognized
// names (spec external interface §6).
type Kind string

const (
	BF               Kind = "bf"
	WBF              Kind = "wbf"
	MWBF             Kind = "mwbf"
	IMWBF            Kind = "imwbf"
	OneStepMLGKind   Kind = "one-step-mlg"
	HardMLGKind      Kind = "hard-mlg"
	SoftMLGKind      Kind = "soft-mlg"
	AdaptiveSoftMLG  Kind = "adaptive-soft-mlg"
	MinSumKind       Kind = "min-sum"
	NormalizedMinSum Kind = "normalized-min-sum"
	OffsetMinSum     Kind = "offset-min-sum"
)

// Decoder is the narrow contract every variant satisfies: decode a length-n
// real vector into a success flag and a length-n hard-decision codeword.
type Decoder interface {
	Decode(in []float64) (success bool, out []int)
}

// New constructs the decoder named by kind, bound to H, with the given
// iteration budget and tuning scalar (ignored by variants that don't use
// one). Unknown names and invalid flag combinations are rejected here, at
// construction time, never inside a Decode call.
func New(kind Kind, H *ctrlmat.CtrlMat, maxIter int, alpha float64) (Decoder, error) {
	logrus.Debugf("decoder: constructing %s (n=%d k=%d maxIter=%d alpha=%v)", kind, H.Length(), H.Checks(), maxIter, alpha)

	switch kind {
	case BF:
		return NewBitFlipper(H, maxIter, false, false, false, 0)
	case WBF:
		return NewBitFlipper(H, maxIter, true, false, false, 0)
	case MWBF:
		return NewBitFlipper(H, maxIter, true, true, false, alpha)
	case IMWBF:
		return NewBitFlipper(H, maxIter, true, true, true, alpha)
	case OneStepMLGKind:
		return NewOneStep(H)
	case HardMLGKind:
		return NewMajorityLogic(H, maxIter, false, false, 0)
	case SoftMLGKind:
		return NewMajorityLogic(H, maxIter, true, false, 0)
	case AdaptiveSoftMLG:
		return NewMajorityLogic(H, maxIter, true, true, alpha)
	case MinSumKind:
		return NewMinSum(H, maxIter, false, false, 0)
	case NormalizedMinSum:
		return NewMinSum(H, maxIter, true, false, alpha)
	case OffsetMinSum:
		return NewMinSum(H, maxIter, false, true, alpha)
	default:
		return nil, fmt.Errorf("decoder: unknown decoder kind %q", kind)
	}
}

// hardDecision implements the initialization every iterative decoder shares:
// out[j] = 1 if in[j] < 0 else 0.
func hardDecision(in []float64) []int {
	out := make([]int, len(in))
	for j, v := range in {
		if v < 0 {
			out[j] = 1
		}
	}
	return out
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
