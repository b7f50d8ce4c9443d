/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"github.com/spf13/cobra"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/prediction"
)

var (
	predictIn     prediction.Input
	predictMode   string
	predictRecord bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score last night's sleep and print the alarm plan",
	Long: `Score next-morning readiness from last night's sleep against the stored
baseline and print the resulting plan with its snooze pattern.

Examples:
  smartalarm predict --bedtime 23:00 --alarm 07:00 --sleep 7.5 --screen 30
  smartalarm predict --bedtime 01:30 --alarm 07:00 --sleep 5 --chronotype late --record`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictIn.Bedtime, "bedtime", "23:00", "Bedtime as HH:MM")
	f.StringVar(&predictIn.AlarmTime, "alarm", "07:00", "Alarm time as HH:MM")
	f.Float64Var(&predictIn.SleepDurationHours, "sleep", 7, "Hours slept")
	f.Float64Var(&predictIn.ScreenTimeBeforeBedMin, "screen", 0, "Screen minutes before bed")
	f.Float64Var(&predictIn.LightActivityMin, "activity", 0, "Minutes of light activity")
	f.BoolVar(&predictIn.IsWeekend, "weekend", false, "The alarm is on a weekend")
	f.StringVar(&predictIn.Chronotype, "chronotype", prediction.ChronotypeIntermediate, "early, intermediate or late")
	f.StringVar(&predictMode, "mode", string(models.ModeMood), "Wake-up mode: mood, radio or calendar")
	f.BoolVar(&predictRecord, "record", false, "Fold the night into the stored baseline")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	in := predictIn
	in.Mode = models.Mode(predictMode)

	svc, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	plan, err := svc.Predictor.Predict(in)
	if err != nil {
		return err
	}
	if predictRecord {
		if err := svc.Predictor.Record(cmd.Context(), in, plan.Score); err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), plan)
}
