package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	relnahttp "github.com/ashishbaghudana/relna/internal/interfaces/http"
)

// newServeCommand exposes the pipeline over HTTP.
func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the annotation pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rt)
		},
	}
}

func runServe(cmd *cobra.Command, rt *runtime) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	defer p.close()

	router := relnahttp.NewRouter(relnahttp.RouterConfig{
		TagHandler:     relnahttp.NewTagHandler(p.service, rt.logger),
		MetricsHandler: p.metrics.Handler(),
		Mode:           rt.cfg.Server.Mode,
	})
	srv := relnahttp.NewServer(&rt.cfg.Server, router, rt.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}
