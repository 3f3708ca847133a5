package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/epget-cli/epget/color"
	"github.com/epget-cli/epget/icon"
	"github.com/epget-cli/epget/style"
)

// checkBrowser exits when bin is neither an executable path nor a command found in PATH.
func checkBrowser(bin string) {
	if _, err := exec.LookPath(bin); err == nil {
		return
	}

	printMissingBrowserError(bin)
	os.Exit(1)
}

func printMissingBrowserError(bin string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install --cask chromium"
	case "linux":
		installCmd = "sudo apt install chromium"
	case "windows":
		installCmd = "winget install Google.Chrome"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Browser Not Found", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The browser '%s' is not an executable file and was not found in your PATH.\n"+
		"A Chromium-family browser is required (Chromium, Chrome, Edge, Brave).", bin)

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install one, try running:\n  %s", style.New().Foreground(color.Cyan).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
