/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	resetForce    bool
	resetHistory  bool
	resetLearning bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Print what the learning model has picked up",
	Args:  cobra.NoArgs,
	RunE:  runInsights,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset play history and/or the learning model",
	Long: `Reset the persisted selection state.

With neither flag both stores are reset.

Examples:
  # Interactive reset of everything
  smartalarm reset

  # Forget what has been played, keep learned preferences
  smartalarm reset --history --force`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")
	resetCmd.Flags().BoolVar(&resetHistory, "history", false, "Reset the play history")
	resetCmd.Flags().BoolVar(&resetLearning, "learning", false, "Reset the learning model")
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(resetCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	svc, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()
	return printJSON(cmd.OutOrStdout(), svc.Learning.Insights())
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetHistory && !resetLearning {
		resetHistory, resetLearning = true, true
	}

	if !resetForce {
		var targets []string
		if resetHistory {
			targets = append(targets, "play history")
		}
		if resetLearning {
			targets = append(targets, "learning model")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "This will erase the %s. Type 'yes' to continue: ", strings.Join(targets, " and "))
		answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && answer == "" {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(strings.ToLower(answer)) != "yes" {
			return errors.New("reset cancelled")
		}
	}

	svc, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	if resetHistory {
		if err := svc.History.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset history: %w", err)
		}
		logger.Info().Msg("play history reset")
	}
	if resetLearning {
		if err := svc.Learning.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset learning: %w", err)
		}
		logger.Info().Msg("learning model reset")
	}
	return nil
}
