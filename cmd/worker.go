package cmd

import (
	"context"

	"lending/worker"
	"lending/worker/interest"
	"lending/worker/monitor"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run interest accrual and liquidation monitor jobs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)

		database := provideDatabase()
		defer database.Close()

		s := provideServices(database)

		interestJob, err := interest.New(s.Config, database, s.Reserves)
		if err != nil {
			log.WithError(err).Fatal("init interest worker failed")
		}

		monitorJob, err := monitor.New(s.Config, s.Positions, s.Markets, s.Operations, s.Liquidations, s.Margins)
		if err != nil {
			log.WithError(err).Fatal("init monitor worker failed")
		}

		jobs := []worker.IJob{interestJob, monitorJob}
		for _, j := range jobs {
			if err := j.Start(); err != nil {
				log.WithError(err).Fatal("start worker failed")
			}
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			for _, j := range jobs {
				if err := j.Stop(); err != nil {
					log.WithError(err).Error("stop worker failed")
				}
			}

			close(done)
		})

		log.Infoln("workers started")
		<-done
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
