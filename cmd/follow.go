package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/memsift/internal/config"
	"github.com/bimmerbailey/memsift/internal/output"
	"github.com/bimmerbailey/memsift/internal/tail"
)

var followCmd = &cobra.Command{
	Use:   "follow <file>",
	Short: "Follow a growing log and print distinct blocks as they appear",
	Long: `Follow a memcheck-style log like "tail -f", printing each distinct
diagnostic block as soon as it is complete. A marker occurrence resets the
seen-set live, so blocks repeated across runs reappear once per run.

Examples:
  memsift follow memcheck.log
  memsift follow --from-start memcheck.log
  memsift follow --follow-rotate /var/log/app/memcheck.log`,
	Args: cobra.ExactArgs(1),
	RunE: runFollow,
}

func init() {
	addFilterFlags(followCmd)
	followCmd.Flags().Bool("from-start", false, "process existing content before following")
	followCmd.Flags().Bool("follow-rotate", false, "keep following through log rotations")

	rootCmd.AddCommand(followCmd)
}

func runFollow(cmd *cobra.Command, args []string) error {
	opts, err := filterOptions(cmd)
	if err != nil {
		return err
	}
	fromStart, _ := cmd.Flags().GetBool("from-start")
	followRotate, _ := cmd.Flags().GetBool("follow-rotate")

	emitter := output.NewEmitter(cmd.OutOrStdout(), output.ParseColorMode(viper.GetString("color")))

	tailer := tail.New(tail.Options{
		FilePath:     args[0],
		FromStart:    fromStart,
		FollowRotate: followRotate,
		Filter:       opts,
		Limits:       config.DefaultLimits(),
		Emit:         emitter.WriteBlock,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return tailer.Run(ctx)
}
