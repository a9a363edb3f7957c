package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kestrel/hal"
	"kestrel/kernel"
	"kestrel/sim"
)

var (
	simTicks int
	simHz    int
	simTrace bool
	simDebug bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run the built-in demo system under the simulator",
	Long: `sim boots the demo task table (a pinger calling a passive echo
server over a loaned scheduling context, plus a background spinner) and
runs it for a fixed number of ticks. Task logs go to stderr; --trace
prints one scheduler line per tick on stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if simDebug {
			level = zerolog.DebugLevel
		}
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()

		cfg, progs := sim.Demo()
		k, err := kernel.NewKernel(cfg)
		if err != nil {
			return err
		}
		k.SetLogSink(sim.NewZerologSink(k, log))

		m, err := sim.NewMachine(k, progs, log)
		if err != nil {
			return err
		}
		if simTrace {
			m.SetTracer(sim.NewTracer(cmd.OutOrStdout()))
		}

		if simHz > 0 {
			timer := hal.NewHostTimer(simHz)
			defer timer.Stop()
			m.RunTimer(timer, simTicks)
		} else {
			m.Run(simTicks)
		}

		log.Info().
			Uint64("ticks", k.Now()).
			Int("tasks", k.TaskCount()).
			Msg("simulation finished")
		return nil
	},
}

func init() {
	simCmd.Flags().IntVar(&simTicks, "ticks", 200, "number of scheduler ticks to run")
	simCmd.Flags().IntVar(&simHz, "hz", 0, "tick rate; 0 runs as fast as possible")
	simCmd.Flags().BoolVar(&simTrace, "trace", false, "print a scheduler trace line per tick")
	simCmd.Flags().BoolVar(&simDebug, "debug", false, "enable debug logging")
}
