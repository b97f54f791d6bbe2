package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/generation"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check tutorial documents or raw LLM responses",
	Long: `Parses each file the way a generated response is parsed (code fences are
stripped) and reports JSON errors and shape violations. Use - for stdin.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		strict, _ := cmd.Flags().GetBool("strict")
		if err := runValidate(args, strict, os.Stdin, os.Stdout); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All tutorials are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("strict", false, "Require an intro first and a celebration last")
}

func runValidate(paths []string, strict bool, stdin io.Reader, w io.Writer) error {
	var opts []domain.ValidateOption
	if strict {
		opts = append(opts, domain.StrictSequence())
	}

	var errs []error
	for _, path := range paths {
		data, err := readInput(path, stdin)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t, err := generation.Parse(string(data), opts...)
		if err != nil {
			fmt.Fprintf(w, "✗ %s: %v\n", path, err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(w, "✓ %s: %s (%q, %d cards)\n", path, t.ID, t.Title, len(t.Cards))
	}
	return errors.Join(errs...)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
