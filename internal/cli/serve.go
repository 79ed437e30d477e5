package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shopmart/internal/cart"
	"shopmart/internal/catalog"
	"shopmart/internal/events"
	"shopmart/internal/http/handlers"
	applog "shopmart/internal/log"
	"shopmart/internal/repos"
	"shopmart/internal/services"
)

type ServeOptions struct {
	*RootOptions
	Port   string
	Reload bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Run the storefront web server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().BoolVar(&opts.Reload, "reload", false, "re-read templates on every request")
	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg := opts.Config
	if opts.Port != "" {
		cfg.Port = opts.Port
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open receipt db: %w", err)
	}
	defer db.Close()

	var publisher services.OrderPublisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		p, err := events.Dial(cfg.RabbitMQURL, cfg.OrderQueue, 4)
		if err != nil {
			// orders still go through without the broker
			applog.Event("events.disabled", err, nil)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	api := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	deps := handlers.NewDeps(db, api, publisher)

	serverOpts := handlers.DefaultServerOptions(cfg)
	serverOpts.ReloadTemplates = opts.Reload
	app := handlers.NewServer(serverOpts, deps)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepCarts(ctx, deps.Carts, cfg.CartIdle)

	errCh := make(chan error, 1)
	go func() {
		applog.Event("server.start", nil, map[string]any{"port": cfg.Port, "catalog": api.BaseURL()})
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		applog.Event("server.stop", nil, nil)
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

// sweepCarts drops abandoned carts until ctx is done.
func sweepCarts(ctx context.Context, carts *cart.Sessions, idle time.Duration) {
	if idle <= 0 {
		return
	}
	t := time.NewTicker(idle / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := carts.Sweep(idle); n > 0 {
				applog.Event("cart.sweep", nil, map[string]any{"dropped": n})
			}
		}
	}
}
