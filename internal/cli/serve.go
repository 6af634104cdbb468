package cli

import (
	"github.com/spf13/cobra"

	"github.com/L1TangDingZhen/BOX-P/internal/server"
	"github.com/L1TangDingZhen/BOX-P/pkg/cache"
	"github.com/L1TangDingZhen/BOX-P/pkg/observability"
)

// svgCacheEntries caps the number of rendered support graphs the server keeps.
const svgCacheEntries = 256

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		trustProxy bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve placement sessions over HTTP",
		Long: `Serve placement sessions over HTTP.

Sessions are kept in memory and expire after server.session_ttl of
inactivity. CORS origins and rate limits come from the config file and the
BOXP_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			sessOpts, err := c.sessionOptions(cfg)
			if err != nil {
				return err
			}
			ttl, err := cfg.SessionTTL()
			if err != nil {
				return err
			}

			counters := observability.NewCounters()
			observability.SetPlacementHooks(counters)
			observability.SetHTTPHooks(counters)
			defer observability.Reset()

			srv := server.New(server.Options{
				Addr:           cfg.Server.Addr,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Rate:           cfg.Server.Rate,
				Burst:          cfg.Server.Burst,
				TrustProxy:     trustProxy,
				SessionTTL:     ttl,
				Session:        sessOpts,
				Seed:           cfg.Seed,
				Stats:          counters,
				Cache:          cache.NewMemoryCache(svgCacheEntries),
				Logger:         c.Logger,
			})

			printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
			printKeyValue("container", sessOpts.Container.String())
			printKeyValue("session ttl", ttl.String())
			printNextStep("Health check", "curl http://localhost"+cfg.Server.Addr+"/api/health")
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, :8080)")
	cmd.Flags().BoolVar(&trustProxy, "trust-proxy", false, "use X-Forwarded-For for rate limiting")
	return cmd
}
