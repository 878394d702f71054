package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/memsift/internal/config"
	"github.com/bimmerbailey/memsift/internal/dedupe"
	"github.com/bimmerbailey/memsift/internal/input"
	"github.com/bimmerbailey/memsift/internal/monitor"
	"github.com/bimmerbailey/memsift/internal/output"
)

var filterCmd = &cobra.Command{
	Use:   "filter [file]",
	Short: "Deduplicate diagnostic blocks and print only distinct reports",
	Long: `Filter a memcheck-style log, printing each distinct diagnostic block once.

Blocks are delimited by lines starting with a ==<pid>== bracket. Two blocks
are duplicates when their canonicalized leading lines match: addresses,
byte/block counts, and unresolved symbols are scrubbed before comparison
unless --verbose is set. Only content after the last marker occurrence is
considered; --keep-all disables the marker entirely.

Reads the given file, "-", or standard input. Inputs larger than 5 MB are
processed in bounded-memory streaming mode automatically; standard input is
always streamed.

Examples:
  memsift filter memcheck.log
  memsift filter --depth 3 memcheck.log
  memsift filter --keep-all --verbose memcheck.log
  valgrind ./prog 2>&1 | memsift filter -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilter,
}

func init() {
	addFilterFlags(filterCmd)
	addStreamFlag(filterCmd)
	filterCmd.Flags().Bool("progress", false, "report line-count progress periodically on stderr")
	filterCmd.Flags().Bool("monitor-memory", false, "report memory usage periodically on stderr")

	rootCmd.AddCommand(filterCmd)
}

// addFilterFlags registers the flags shared by every command that runs the
// deduplication engine.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("marker", "m", config.DefaultMarker, "marker substring; only content after its last occurrence is processed")
	cmd.Flags().IntP("depth", "d", 0, "number of leading block lines used for duplicate detection (0 = all)")
	cmd.Flags().BoolP("keep-all", "k", false, "disable marker trimming and process the whole input")
}

// addStreamFlag registers the mode override for commands that buffer input.
// Follow mode never buffers, so it does not take the flag.
func addStreamFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("stream", false, "force bounded-memory streaming mode")
}

// filterOptions builds validated engine options from flags and configuration.
// Config-file values apply only where the flag was not set explicitly.
func filterOptions(cmd *cobra.Command) (config.Options, error) {
	marker, _ := cmd.Flags().GetString("marker")
	if !cmd.Flags().Changed("marker") {
		if v := viper.GetString("marker"); v != "" {
			marker = v
		}
	}

	depth, _ := cmd.Flags().GetInt("depth")
	if !cmd.Flags().Changed("depth") && viper.IsSet("depth") {
		depth = viper.GetInt("depth")
	}

	keepAll, _ := cmd.Flags().GetBool("keep-all")
	stream, _ := cmd.Flags().GetBool("stream")
	progress, _ := cmd.Flags().GetBool("progress")
	memory, _ := cmd.Flags().GetBool("monitor-memory")

	opts := config.Options{
		Marker:        marker,
		Depth:         depth,
		Verbose:       viper.GetBool("verbose"),
		KeepAll:       keepAll,
		ForceStream:   stream,
		Progress:      progress,
		MonitorMemory: memory,
	}
	if err := opts.Validate(); err != nil {
		return config.Options{}, err
	}
	return opts, nil
}

// runPipeline opens the input, picks a mode, and runs the engine with the
// given emit callback. Shared by filter, stats, and explain.
func runPipeline(cmd *cobra.Command, args []string, opts config.Options, emit dedupe.EmitFunc) (dedupe.Summary, error) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	src, err := input.Open(arg)
	if err != nil {
		return dedupe.Summary{}, err
	}
	defer src.Close()

	limits := config.DefaultLimits()

	var obs dedupe.Observer
	reporter := monitor.New(
		slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)),
		0, opts.Progress, opts.MonitorMemory)
	if reporter.Active() {
		obs = reporter.Observe
	}

	if input.ChooseMode(src.Size, opts.ForceStream) == input.ModeStream {
		return dedupe.RunStream(src, opts, limits, emit, obs)
	}
	return dedupe.RunBatch(src, opts, limits, emit, obs)
}

func runFilter(cmd *cobra.Command, args []string) error {
	opts, err := filterOptions(cmd)
	if err != nil {
		return err
	}

	emitter := output.NewEmitter(cmd.OutOrStdout(), output.ParseColorMode(viper.GetString("color")))
	sum, err := runPipeline(cmd, args, opts, emitter.WriteBlock)
	if err != nil {
		return err
	}

	if sum.Lines == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: input is empty")
	}
	return nil
}
