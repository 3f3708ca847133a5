package version

import (
	"fmt"

	"github.com/epget-cli/epget/color"
	"github.com/epget-cli/epget/constant"
	"github.com/epget-cli/epget/icon"
	"github.com/epget-cli/epget/key"
	"github.com/epget-cli/epget/style"
	"github.com/epget-cli/epget/util"
	"github.com/spf13/viper"
)

// Notify prints a short notice when a newer release than the running one exists.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	version, err := Latest()
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/epget-cli/epget/releases/tag/v"+version),
	)
}
