/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/pipeline"
)

var (
	selectMood       string
	selectLanguages  []string
	selectMaxResults int
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run the selection pipeline once",
	Long: `Run search, scoring and the variety randomizer once and print the
chosen track together with the full decision trace.

Examples:
  smartalarm select --mood Energetic --language English
  smartalarm select --mood Calm --language Tamil --language Hindi`,
	Args: cobra.NoArgs,
	RunE: runSelect,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <title> <artist>",
	Short: "Print the language scores for a track",
	Args:  cobra.ExactArgs(2),
	RunE:  runClassify,
}

func init() {
	selectCmd.Flags().StringVarP(&selectMood, "mood", "m", string(models.MoodNeutral), "Mood to select for")
	selectCmd.Flags().StringSliceVarP(&selectLanguages, "language", "l", []string{string(models.DefaultLanguage)}, "Preferred language, repeatable and in priority order")
	selectCmd.Flags().IntVar(&selectMaxResults, "max-results", 20, "Maximum tracks to collect before scoring")
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(classifyCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	mood, err := models.ParseMood(selectMood)
	if err != nil {
		return err
	}
	langs, err := models.ParseLanguages(selectLanguages)
	if err != nil {
		return err
	}

	svc, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Pipeline.Select(cmd.Context(), pipeline.Request{
		Mood:       mood,
		Languages:  langs,
		MaxResults: selectMaxResults,
	})
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runClassify(cmd *cobra.Command, args []string) error {
	svc, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	title, artist := args[0], args[1]
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"scores":       svc.Classifier.Classify(title, artist),
		"quick_detect": svc.Classifier.QuickDetect(title, artist),
		"explanation":  svc.Classifier.Explain(title, artist),
	})
}
