// Package ctrlmat implements the sparse parity-check-matrix representation
// shared by every decoder in the decoder package: row adjacency
// K[i] (columns with a 1 in row i) and column adjacency N[j] (rows with a 1
// in column j), derived once at construction and never mutated afterward.
package ctrlmat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"
	mat "github.com/nathanhack/sparsemat"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// CtrlMat is an immutable sparse parity-check matrix H. It is safe to share
// by reference across any number of concurrently-running decoders.
type CtrlMat struct {
	h mat.SparseMat

	n, k, gamma, dmin int
	orthogonal        bool
	regular           bool

	rowAdj [][]int // rowAdj[i] == K[i]: sorted columns with a 1 in row i
	colAdj [][]int // colAdj[j] == N[j]: sorted rows with a 1 in column j
}

// New derives a CtrlMat from a bit-row representation of H. Row and column
// adjacency lists are computed once; H itself is never mutated again.
func New(H mat.SparseMat) (*CtrlMat, error) {
	rows, cols := H.Dims()
	if rows <= 0 {
		return nil, fmt.Errorf("ctrlmat: H must have at least one row")
	}
	if cols <= 0 {
		return nil, fmt.Errorf("ctrlmat: H must have at least one column")
	}

	rowAdj := make([][]int, rows)
	for i := 0; i < rows; i++ {
		rowAdj[i] = H.Row(i).NonzeroArray()
		if len(rowAdj[i]) == 0 {
			return nil, fmt.Errorf("ctrlmat: row %d has weight zero", i)
		}
	}

	colAdj := make([][]int, cols)
	for j := 0; j < cols; j++ {
		colAdj[j] = H.Column(j).NonzeroArray()
	}

	gamma := len(rowAdj[0])
	regular := true
	for i := 1; i < rows; i++ {
		if len(rowAdj[i]) != gamma {
			regular = false
			break
		}
	}

	if !regular {
		logrus.Debugf("ctrlmat: H is irregular, row weights are not all %d", gamma)
	}

	return &CtrlMat{
		h:       H,
		n:       cols,
		k:       rows,
		gamma:   gamma,
		regular: regular,
		rowAdj:  rowAdj,
		colAdj:  colAdj,
	}, nil
}

// NewFromRows builds a CtrlMat directly from explicit row adjacency lists
// (K[i] given as column indices). Out-of-range indices are a contract
// violation and panic rather than return an error, matching the fatal
// handling of malformed input elsewhere in this package's ancestry
// (linearblock.LinearBlock.Encode/Decode).
func NewFromRows(n int, rows [][]int) *CtrlMat {
	if n <= 0 {
		panic("ctrlmat: n must be positive")
	}
	if len(rows) == 0 {
		panic("ctrlmat: at least one row required")
	}

	H := mat.DOKMat(len(rows), n)
	for i, cols := range rows {
		sorted := slices.Clone(cols)
		slices.Sort(sorted)
		sorted = slices.Compact(sorted)
		if len(sorted) != len(cols) {
			panic(fmt.Sprintf("ctrlmat: row %d lists a duplicate column", i))
		}

		for _, j := range sorted {
			if j < 0 || j >= n {
				panic(fmt.Sprintf("ctrlmat: row %d references out-of-range column %d (n=%d)", i, j, n))
			}
			H.Set(i, j, 1)
		}
	}

	cm, err := New(H)
	if err != nil {
		panic(fmt.Sprintf("ctrlmat: %v", err))
	}
	return cm
}

// NewFromPolynomial builds a cyclic CtrlMat from a single row polynomial's
// nonzero exponents, per the control-matrix line format: the exponents are
// expanded left-to-right from the highest exponent (degree) down to 0 into a
// length-n bit string, then used cyclically to form all k rows.
func NewFromPolynomial(n, k, dmin int, exponents []int, orthogonal bool) (*CtrlMat, error) {
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("ctrlmat: n and k must be positive, found n=%d k=%d", n, k)
	}
	if k > n {
		return nil, fmt.Errorf("ctrlmat: parity count k (%d) must not exceed code length n (%d)", k, n)
	}
	if len(exponents) == 0 {
		return nil, fmt.Errorf("ctrlmat: at least one exponent required")
	}

	degree := 0
	seen := make(map[int]bool, len(exponents))
	for _, e := range exponents {
		if e < 0 {
			return nil, fmt.Errorf("ctrlmat: exponent %d must be non-negative", e)
		}
		if seen[e] {
			return nil, fmt.Errorf("ctrlmat: duplicate exponent %d", e)
		}
		seen[e] = true
		if e > degree {
			degree = e
		}
	}
	if degree >= n {
		return nil, fmt.Errorf("ctrlmat: polynomial degree %d exceeds code length %d", degree, n)
	}

	row0 := make([]int, n)
	for _, e := range exponents {
		row0[degree-e] = 1
	}

	H := mat.DOKMat(k, n)
	for i := 0; i < k; i++ {
		for p, bit := range row0 {
			if bit == 0 {
				continue
			}
			H.Set(i, (p+i)%n, 1)
		}
	}

	cm, err := New(H)
	if err != nil {
		return nil, err
	}
	cm.dmin = dmin
	cm.orthogonal = orthogonal

	if detected := isOrthogonal(cm); detected != orthogonal {
		logrus.Warnf("ctrlmat: control line tagged %s but the constructed H is %s",
			orthoTag(orthogonal), orthoTag(detected))
	}

	return cm, nil
}

// Parse reads a single control-matrix line:
//
//	<n> <k> <d_min> : <e1> <e2> ... <eR> <ortho|nonortho>
func Parse(line string) (*CtrlMat, error) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("ctrlmat: missing ':' separator in control line %q", line)
	}

	header := strings.Fields(parts[0])
	if len(header) != 3 {
		return nil, fmt.Errorf("ctrlmat: expected '<n> <k> <d_min>' but found %q", parts[0])
	}
	n, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("ctrlmat: invalid n %q: %w", header[0], err)
	}
	k, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("ctrlmat: invalid k %q: %w", header[1], err)
	}
	dmin, err := strconv.Atoi(header[2])
	if err != nil {
		return nil, fmt.Errorf("ctrlmat: invalid d_min %q: %w", header[2], err)
	}

	body := strings.Fields(parts[1])
	if len(body) < 2 {
		return nil, fmt.Errorf("ctrlmat: body must list at least one exponent and an orthogonality tag, found %q", parts[1])
	}

	tag := body[len(body)-1]
	var orthogonal bool
	switch tag {
	case "ortho":
		orthogonal = true
	case "nonortho":
		orthogonal = false
	default:
		return nil, fmt.Errorf("ctrlmat: unknown orthogonality tag %q", tag)
	}

	expTokens := body[:len(body)-1]
	exponents := make([]int, 0, len(expTokens))
	for _, t := range expTokens {
		e, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("ctrlmat: invalid exponent %q: %w", t, err)
		}
		exponents = append(exponents, e)
	}

	return NewFromPolynomial(n, k, dmin, exponents, orthogonal)
}

// ParseAll reads every control-matrix line out of r, skipping blank lines
// and lines beginning with '#'.
func ParseAll(r io.Reader) ([]*CtrlMat, error) {
	return ParseAllWithProgress(r, false)
}

// ParseAllWithProgress behaves like ParseAll but optionally renders a
// progress bar while working through a large control-matrix file, matching
// the progress-reporting style used for other long-running, line-at-a-time
// LDPC construction loops in this codebase's ancestry.
func ParseAllWithProgress(r io.Reader, showProgress bool) ([]*CtrlMat, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ctrlmat: error reading control-matrix file: %w", err)
	}

	var bar *pb.ProgressBar
	if showProgress {
		bar = pb.StartNew(len(lines))
	}

	result := make([]*CtrlMat, 0, len(lines))
	for i, line := range lines {
		if showProgress {
			bar.Increment()
		}
		cm, err := Parse(line)
		if err != nil {
			if showProgress {
				bar.Finish()
			}
			return nil, fmt.Errorf("ctrlmat: line %d: %w", i+1, err)
		}
		result = append(result, cm)
	}
	if showProgress {
		bar.Finish()
	}
	return result, nil
}

// Length returns n, the code length (number of columns of H).
func (c *CtrlMat) Length() int { return c.n }

// Checks returns k, the number of parity-check equations (rows of H).
func (c *CtrlMat) Checks() int { return c.k }

// RowWeight returns γ, the weight of row 0. For regular LDPC matrices every
// row shares this weight; see Regular.
func (c *CtrlMat) RowWeight() int { return c.gamma }

// Regular reports whether every row of H has the same weight (the
// assumption the Majority-Logic family requires).
func (c *CtrlMat) Regular() bool { return c.regular }

// DMin returns the minimum distance recorded for this code, if it was
// constructed from a control-matrix line that carried one (0 otherwise).
func (c *CtrlMat) DMin() int { return c.dmin }

// Orthogonal reports whether this code's control line was tagged "ortho".
func (c *CtrlMat) Orthogonal() bool { return c.orthogonal }

// Row returns K[i]: the sorted column indices with a 1 in row i.
func (c *CtrlMat) Row(i int) []int { return c.rowAdj[i] }

// Column returns N[j]: the sorted row indices with a 1 in column j.
func (c *CtrlMat) Column(j int) []int { return c.colAdj[j] }

// H exposes the underlying sparse matrix, for callers that need direct
// matrix operations (e.g. batch syndrome checks via sparsemat).
func (c *CtrlMat) H() mat.SparseMat { return c.h }

// Syndrome computes s[i] = XOR_{j in K[i]} out[j] for every row i.
func (c *CtrlMat) Syndrome(out []int) []int {
	if len(out) != c.n {
		panic(fmt.Sprintf("ctrlmat: codeword length %d != n (%d)", len(out), c.n))
	}

	s := make([]int, c.k)
	for i := 0; i < c.k; i++ {
		acc := 0
		for _, j := range c.rowAdj[i] {
			acc ^= out[j]
		}
		s[i] = acc
	}
	return s
}

// IsZero reports whether every entry of a syndrome is zero.
func IsZero(s []int) bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

func (c *CtrlMat) String() string {
	buf := strings.Builder{}
	buf.WriteString(fmt.Sprintf("{n:%d k:%d gamma:%d regular:%v dmin:%d orthogonal:%v}", c.n, c.k, c.gamma, c.regular, c.dmin, c.orthogonal))
	return buf.String()
}

func orthoTag(orthogonal bool) string {
	if orthogonal {
		return "ortho"
	}
	return "nonortho"
}

// isOrthogonal reports whether every pair of rows shares at most one common
// column -- the structural requirement a control line's "ortho" tag claims,
// and the property one-step Majority-Logic decoding depends on.
func isOrthogonal(c *CtrlMat) bool {
	pairCount := make(map[[2]int]int)
	for j := 0; j < c.n; j++ {
		rows := c.colAdj[j]
		for a := 0; a < len(rows); a++ {
			for b := a + 1; b < len(rows); b++ {
				key := [2]int{rows[a], rows[b]}
				pairCount[key]++
				if pairCount[key] > 1 {
					return false
				}
			}
		}
	}
	return true
}
