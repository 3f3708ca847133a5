package cmd

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRootArguments(t *testing.T) {
	Convey("Given the root command", t, func() {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		defer rootCmd.SetOut(nil)

		Convey("Missing arguments print a notice and the usage", func() {
			rootCmd.SetArgs([]string{"chromium", "https://site.example/season/1"})
			So(rootCmd.Execute(), ShouldBeNil)
			So(out.String(), ShouldStartWith, "Please provide all arguments.\n")
			So(out.String(), ShouldContainSubstring, "Usage:")
		})

		Convey("A blank argument counts as missing", func() {
			rootCmd.SetArgs([]string{"chromium", "https://site.example/season/1", "  ", "/tmp"})
			So(rootCmd.Execute(), ShouldBeNil)
			So(out.String(), ShouldStartWith, "Please provide all arguments.\n")
		})
	})
}

func TestRootSurface(t *testing.T) {
	Convey("The root command takes tuning from the config file, not from flags", t, func() {
		for _, name := range []string{"headless", "clean", "bar", "timeout"} {
			So(rootCmd.Flags().Lookup(name), ShouldBeNil)
		}
	})

	Convey("The help names the browser family it can drive", t, func() {
		So(rootCmd.Long, ShouldContainSubstring, "Chromium-family")
	})
}
