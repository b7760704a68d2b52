package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/huntline/phrasehound/internal/domain/seed"
	"github.com/huntline/phrasehound/internal/domain/text"
	"github.com/huntline/phrasehound/internal/domain/verdict"
	"github.com/huntline/phrasehound/internal/usecase/match"
)

var matchCmd = &cobra.Command{
	Use:   "match <seed phrase>",
	Short: "Evaluate a seed phrase against post text",
	Long: "Reads post text from --file or stdin, runs the match engine once and\n" +
		"prints the verdict. Handy for picking max-gap and threshold values:\n\n" +
		"  echo 'купил наконец органическую гречку' | phrasehoundctl match 'органическая гречка' --max-gap 1",
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.String("file", "", "read post text from a file instead of stdin")
	f.Int("max-gap", 0, "extra words tolerated inside the phrase")
	f.Float64("threshold", 0.72, "fuzzy fallback similarity threshold")
	f.Bool("exact-only", false, "disable the fuzzy fallback")
}

func runMatch(cmd *cobra.Command, args []string) error {
	p, err := seed.New(args[0])
	if err != nil {
		return fmt.Errorf("seed %q normalizes to zero words", args[0])
	}

	file, _ := cmd.Flags().GetString("file")
	maxGap, _ := cmd.Flags().GetInt("max-gap")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	exactOnly, _ := cmd.Flags().GetBool("exact-only")

	var body []byte
	if file != "" {
		body, err = os.ReadFile(file)
	} else {
		body, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read post text: %w", err)
	}

	engine, err := match.NewEngine(match.Config{
		RequireExact:   exactOnly,
		MaxGapWords:    maxGap,
		FuzzyThreshold: threshold,
	})
	if err != nil {
		return err
	}

	docTokens := text.Tokenize(string(body))
	v := engine.Evaluate(p, docTokens)

	fmt.Printf("verdict: %s\n", v.Kind())
	if v.Kind() == verdict.Exact {
		fmt.Printf("gap:     %d\n", v.Gap())
	}
	if v.HasRatio() {
		fmt.Printf("ratio:   %.3f\n", v.Ratio())
	}
	fmt.Printf("seed:    %s\n", p.Canonical())
	fmt.Printf("words:   %d\n", len(docTokens))

	return nil
}
