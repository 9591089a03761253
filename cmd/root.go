/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minitodo",
	Short: "Mini todo API: account signup with OTP confirmation and dated events",
	Long: `minitodo serves a small JSON API where users sign up, confirm their
email with a one-time code, log in and keep a list of dated events.

	minitodo server
	minitodo mailer`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
