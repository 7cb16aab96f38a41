package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Time0o/TUD-channel-coding/ctrlmat"
	"github.com/Time0o/TUD-channel-coding/decoder"

	"github.com/spf13/cobra"
)

var (
	decodeKind    string
	decodeMaxIter uint
	decodeAlpha   float64
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode CTRL_MATRIX_FILE RECEIVED_VECTOR",
	Short: "Decode a received vector against a control-matrix file",
	Long: `Decode a received vector against the first control line of a control-matrix
file, using one of the eleven registered decoder kinds
(bf, wbf, mwbf, imwbf, one-step-mlg, hard-mlg, soft-mlg, adaptive-soft-mlg,
min-sum, normalized-min-sum, offset-min-sum).

RECEIVED_VECTOR is a comma-separated list of n real-valued channel outputs.`,
	Args: cobra.ExactArgs(2),
	Run:  decodeRun,
}

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect CTRL_MATRIX_FILE",
	Short: "Print the properties of every control line in a control-matrix file",
	Args:  cobra.ExactArgs(1),
	Run:   inspectRun,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(inspectCmd)

	decodeCmd.Flags().StringVarP(&decodeKind, "kind", "k", string(decoder.BF), "decoder kind to use")
	decodeCmd.Flags().UintVarP(&decodeMaxIter, "iters", "i", 50, "max number of iterations")
	decodeCmd.Flags().Float64VarP(&decodeAlpha, "alpha", "a", 0.5, "tuning scalar used by MWBF/IMWBF/AdaptiveSoftMLG/NormalizedMinSum/OffsetMinSum")
}

func decodeRun(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()

	matrices, err := ctrlmat.ParseAllWithProgress(f, false)
	if err != nil {
		fmt.Println(err)
		return
	}
	if len(matrices) == 0 {
		fmt.Println("CTRL_MATRIX_FILE contains no control lines")
		return
	}
	H := matrices[0]

	in, err := parseVector(args[1], H.Length())
	if err != nil {
		fmt.Println(err)
		return
	}

	d, err := decoder.New(decoder.Kind(decodeKind), H, int(decodeMaxIter), decodeAlpha)
	if err != nil {
		fmt.Println(err)
		return
	}

	success, out := d.Decode(in)
	fmt.Printf("success: %v\n", success)
	fmt.Printf("codeword: %v\n", out)
}

func inspectRun(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()

	matrices, err := ctrlmat.ParseAllWithProgress(f, true)
	if err != nil {
		fmt.Println(err)
		return
	}

	for i, H := range matrices {
		fmt.Printf("%d: %s\n", i, H)
	}
}

func parseVector(s string, n int) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("RECEIVED_VECTOR has %d entries, expected %d", len(fields), n)
	}

	out := make([]float64, n)
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", field, err)
		}
		out[i] = v
	}
	return out, nil
}
