package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/form"
	"github.com/superabroad/lead-intake/internal/leadclient"
	"github.com/superabroad/lead-intake/internal/logging"
	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/submission"
	"github.com/superabroad/lead-intake/internal/toast"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Logs stay off unless asked for so they do not interleave with the prompts
	if os.Getenv("LOG_LEVEL") != "" {
		opts := logging.OptionsFromEnv("leadform")
		opts.Console = true
		if err := logging.InitLogger(opts); err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		defer logging.Sync()
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	client, err := leadclient.NewFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create lead client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := form.NewStore(config.DefaultCatalog())
	notifier := toast.WithLogging(toast.NewTerminal(os.Stdout), logging.Logger)
	controller := submission.NewController(store, client, notifier)

	if err := run(ctx, surveyPrompter{}, store, controller, os.Stdout); err != nil && !errors.Is(err, errAborted) {
		logging.Logger.Error("lead form failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

const msgFormCleared = "The form has been cleared for your next inquiry."

// watchReset prints msgFormCleared whenever the form goes back to its
// defaults after holding answers
func watchReset(store *form.Store, out io.Writer) func() {
	defaults := models.NewLeadForm(store.Catalog().DefaultCountryCode())
	prev := store.Snapshot()
	return store.Subscribe(func(f models.LeadForm) {
		if f == defaults && prev != defaults {
			fmt.Fprintln(out, msgFormCleared)
		}
		prev = f
	})
}

// run fills and submits the form until the user stops. A failed submission
// keeps the answers so the next round starts from them.
func run(ctx context.Context, p prompter, store *form.Store, controller *submission.Controller, out io.Writer) error {
	fmt.Fprintln(out, "Start your UK study journey. Tell us about yourself and we'll get in touch.")
	defer watchReset(store, out)()

	for {
		if err := ctx.Err(); err != nil {
			return errAborted
		}
		if err := fillForm(p, store); err != nil {
			return err
		}

		result := controller.Submit(ctx)

		question := "Try again?"
		if result.OK {
			question = "Submit another inquiry?"
		}
		again, err := p.Confirm(question, !result.OK)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}
