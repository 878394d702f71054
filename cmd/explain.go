package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/memsift/internal/config"
	"github.com/bimmerbailey/memsift/internal/dedupe"
	"github.com/bimmerbailey/memsift/internal/llm"
)

const explainSystemPrompt = `You are an expert in memory-analysis diagnostics (invalid accesses,
uninitialized values, leaks). You will receive the distinct diagnostic blocks
from one run, already deduplicated. Explain the likely root cause of each
distinct issue in plain language and suggest where to start debugging. Be
concise and concrete; refer to the function names in the stack traces.`

var explainCmd = &cobra.Command{
	Use:   "explain [file]",
	Short: "Summarize distinct diagnostics using a local LLM",
	Long: `Deduplicate the log, then send the distinct diagnostic blocks to the
configured LLM (Ollama by default) for a plain-language explanation.

Requires a running Ollama server (or MEMSIFT_LLM_OLLAMA_HOST / the llm
section of .memsift.yaml pointing at one).

Examples:
  memsift explain memcheck.log
  memsift explain --model llama3.2 --max-blocks 10 memcheck.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplain,
}

func init() {
	addFilterFlags(explainCmd)
	addStreamFlag(explainCmd)
	explainCmd.Flags().String("model", "", "model to use (defaults to the configured model)")
	explainCmd.Flags().Int("max-blocks", 20, "maximum number of distinct blocks sent to the LLM")

	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	opts, err := filterOptions(cmd)
	if err != nil {
		return err
	}
	model, _ := cmd.Flags().GetString("model")
	maxBlocks, _ := cmd.Flags().GetInt("max-blocks")

	var blocks []string
	collect := func(b *dedupe.Block) error {
		if len(blocks) < maxBlocks {
			blocks = append(blocks, b.Text())
		}
		return nil
	}

	sum, err := runPipeline(cmd, args, opts, collect)
	if err != nil {
		return err
	}
	if sum.Accepted == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no diagnostic blocks to explain")
		return nil
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	provider, err := llm.NewProvider(&cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := provider.Heartbeat(ctx); err != nil {
		return err
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Run summary: %d blocks, %d distinct, %d duplicates suppressed.\n\n",
		sum.Blocks, sum.Accepted, sum.Suppressed)
	if sum.Accepted > len(blocks) {
		fmt.Fprintf(&prompt, "(showing the first %d of %d distinct blocks)\n\n", len(blocks), sum.Accepted)
	}
	for i, text := range blocks {
		fmt.Fprintf(&prompt, "--- block %d ---\n%s\n", i+1, text)
	}

	resp, err := provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: explainSystemPrompt},
		{Role: "user", Content: prompt.String()},
	}, &llm.ChatOptions{
		Model:       model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
	return nil
}
