package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SurinderTech/findify-finder/internal/profile"
	"github.com/SurinderTech/findify-finder/plugin/notifier"
	"github.com/SurinderTech/findify-finder/server/ai"
	"github.com/SurinderTech/findify-finder/server/runner/feature"
	"github.com/SurinderTech/findify-finder/server/service/item"
	"github.com/SurinderTech/findify-finder/server/service/matching"
	"github.com/SurinderTech/findify-finder/server/stats"
	"github.com/SurinderTech/findify-finder/store"
	"github.com/SurinderTech/findify-finder/store/db"
)

const greetingBanner = `findify matching service`

var rootCmd = &cobra.Command{
	Use:   "findify",
	Short: "A lost and found matching service",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:              viper.GetString("mode"),
			Data:              viper.GetString("data"),
			Driver:            viper.GetString("driver"),
			DSN:               viper.GetString("dsn"),
			InstanceURL:       viper.GetString("instance-url"),
			Version:           version,
			ExtractorBaseURL:  viper.GetString("extractor-base-url"),
			ExtractorAPIKey:   viper.GetString("extractor-api-key"),
			ExtractorModel:    viper.GetString("extractor-model"),
			ExtractorDim:      viper.GetInt("extractor-dim"),
			ExtractorTimeout:  viper.GetDuration("extractor-timeout"),
			LocationNarrowing: viper.GetBool("match-location-narrowing"),
			MinNotifyScore:    viper.GetInt("match-min-notify-score"),
			RunnerInterval:    viper.GetDuration("match-runner-interval"),
			RunnerBatchSize:   viper.GetInt("match-runner-batch-size"),
			RewardPoints:      viper.GetInt("reward-points"),
			SMTPHost:          viper.GetString("smtp-host"),
			SMTPPort:          viper.GetInt("smtp-port"),
			SMTPUser:          viper.GetString("smtp-username"),
			SMTPPass:          viper.GetString("smtp-password"),
			SMTPFrom:          viper.GetString("smtp-from"),
			WebhookURL:        viper.GetString("webhook-url"),
		}
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			os.Exit(1)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		counters := stats.New()

		var extractor ai.Extractor
		if instanceProfile.ExtractorBaseURL != "" {
			provider, err := ai.NewProvider(ai.ConfigFromProfile(instanceProfile))
			if err != nil {
				slog.Error("failed to create feature extractor", "error", err)
				os.Exit(1)
			}
			extractor = provider
		} else {
			slog.Warn("no extractor configured, matches fall back to the default score")
		}

		dispatcher := notifier.NewDispatcher(storeInstance, counters)
		dispatcher.Register(notifier.NewAppSender(storeInstance))
		dispatcher.Register(notifier.NewEmailSender(notifier.EmailConfig{
			Host:     instanceProfile.SMTPHost,
			Port:     instanceProfile.SMTPPort,
			Username: instanceProfile.SMTPUser,
			Password: instanceProfile.SMTPPass,
			From:     instanceProfile.SMTPFrom,
		}))
		if instanceProfile.WebhookURL != "" {
			dispatcher.Register(notifier.NewWebhookSender(notifier.WebhookConfig{
				URL: instanceProfile.WebhookURL,
			}))
		}

		matchingService := matching.NewService(storeInstance, extractor, dispatcher, counters, matching.Config{
			LocationNarrowing: instanceProfile.LocationNarrowing,
			MinNotifyScore:    instanceProfile.MinNotifyScore,
		})

		itemService := item.NewService(storeInstance,
			item.NewLocalBlobStorage(instanceProfile.Data), matchingService)
		lifecycleManager := matching.NewLifecycleManager(storeInstance, dispatcher,
			instanceProfile.RewardPoints)

		if extractor != nil {
			featureRunner := feature.NewRunner(storeInstance, extractor, matchingService,
				instanceProfile.RunnerInterval, instanceProfile.RunnerBatchSize)
			go featureRunner.Run(ctx)
		}

		if instanceProfile.Mode == "demo" {
			seedDemoData(ctx, storeInstance, itemService, lifecycleManager)
		}

		fmt.Println(greetingBanner)
		slog.Info("findify started",
			"version", instanceProfile.Version,
			"mode", instanceProfile.Mode,
			"driver", instanceProfile.Driver)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down")
		cancel()
		// Give runners a moment to observe cancellation.
		time.Sleep(500 * time.Millisecond)
		if err := storeInstance.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	},
}

var version = "0.1.0"

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of the service, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("instance-url", "", "public url of this instance")
	rootCmd.PersistentFlags().String("extractor-base-url", "", "OpenAI-compatible embeddings endpoint for image features")
	rootCmd.PersistentFlags().String("extractor-api-key", "", "api key for the feature extractor")
	rootCmd.PersistentFlags().String("extractor-model", "", "feature extraction model")
	rootCmd.PersistentFlags().Int("extractor-dim", 0, "feature vector dimension")
	rootCmd.PersistentFlags().Duration("extractor-timeout", 0, "feature extraction request timeout")
	rootCmd.PersistentFlags().Bool("match-location-narrowing", true, "restrict candidates to overlapping locations")
	rootCmd.PersistentFlags().Int("match-min-notify-score", 0, "suppress notifications below this score")
	rootCmd.PersistentFlags().Duration("match-runner-interval", 0, "feature backfill interval")
	rootCmd.PersistentFlags().Int("match-runner-batch-size", 0, "feature backfill batch size")
	rootCmd.PersistentFlags().Int("reward-points", 0, "points credited on a confirmed return")
	rootCmd.PersistentFlags().String("smtp-host", "", "smtp host for email notifications")
	rootCmd.PersistentFlags().Int("smtp-port", 0, "smtp port")
	rootCmd.PersistentFlags().String("smtp-username", "", "smtp username")
	rootCmd.PersistentFlags().String("smtp-password", "", "smtp password")
	rootCmd.PersistentFlags().String("smtp-from", "", "from address for email notifications")
	rootCmd.PersistentFlags().String("webhook-url", "", "webhook endpoint for notification events")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("findify")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
