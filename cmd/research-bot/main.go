package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "research-bot",
	Short:        "AI deep research assistant",
	Long:         `Web search + LLM research assistant: depth search and multi-agent synthesis, as a Telegram bot or from the command line.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
