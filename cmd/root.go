// Package cmd implements the command-line interface for epget.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/epget-cli/epget/color"
	"github.com/epget-cli/epget/constant"
	"github.com/epget-cli/epget/icon"
	"github.com/epget-cli/epget/key"
	"github.com/epget-cli/epget/log"
	"github.com/epget-cli/epget/style"
	"github.com/epget-cli/epget/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	rootCmd.SetOut(os.Stdout)
}

// rootCmd downloads a season.
var rootCmd = &cobra.Command{
	Use:   constant.App + " <browser> <season-url> <check-dir> <download-dir>",
	Short: "Download every episode of a season that is not on disk yet",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.App) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Download every episode of a season that is not on disk yet") + "\n\n" +
		"<browser> must be a Chromium-family executable (Chromium, Chrome, Edge, Brave).\n" +
		"Tuning such as headless mode or the link timeout lives in the config file, see `" + constant.App + " config info`.",
	Example: constant.App + " /usr/bin/chromium https://site.example/season/1 ~/Videos/Show ~/Downloads",
	Args:    cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) < 4 || lo.SomeBy(args[:4], func(a string) bool { return strings.TrimSpace(a) == "" }) {
			cmd.Println("Please provide all arguments.")
			_ = cmd.Usage()
			return
		}

		checkBrowser(args[0])

		handleErr(runDownload(cmd.Context(), runOptions{
			Browser:     args[0],
			SeasonURL:   args[1],
			CheckDir:    args[2],
			DownloadDir: args[3],
		}))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
