package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/Digital-Creators-Team/velvet-slots/config"
	"github.com/Digital-Creators-Team/velvet-slots/engine"
	"github.com/Digital-Creators-Team/velvet-slots/rng"
	"github.com/Digital-Creators-Team/velvet-slots/wire"
)

func main() {
	root := &cobra.Command{
		Use:   "velvetslots",
		Short: "Velvet Nights slot game service",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(simulateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadByEnv(configDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := wire.ProvideLogger(cfg)

			gameCfg, err := wire.ProvideGameConfig(cfg)
			if err != nil {
				return fmt.Errorf("load game config: %w", err)
			}

			redisClient, err := wire.ProvideRedisClient(cfg)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			defer redisClient.Close() //nolint:errcheck

			publisher, err := wire.ProvidePublisher(cfg, logger)
			if err != nil {
				return fmt.Errorf("connect kafka: %w", err)
			}

			store := wire.ProvideSessionStore(redisClient)
			ledger := wire.ProvideLedger(cfg, logger)

			app := wire.ProvideApp(wire.ProvideServerOptions(cfg, logger, gameCfg, store, ledger, publisher))
			app.UseCommonMiddlewares()
			app.RegisterHealthCheck()
			app.RegisterGameRoutes()

			return app.Run()
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", "configs", "directory holding config-{env}.yaml files")
	return cmd
}

func simulateCmd() *cobra.Command {
	var (
		spins      int
		bet        float64
		serverSeed string
		clientSeed string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run seeded spins and report return statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := engine.DefaultConfig()
			if configPath != "" {
				loaded, err := engine.LoadConfig(configPath)
				if err != nil {
					return fmt.Errorf("load game config: %w", err)
				}
				cfg = loaded
			}

			rep, err := simulate(cfg, spins, bet, serverSeed, clientSeed)
			if err != nil {
				return err
			}

			fmt.Printf("spins:          %d\n", spins)
			fmt.Printf("bet:            %.2f\n", bet)
			fmt.Printf("rtp:            %.4f\n", rep.rtp)
			fmt.Printf("return stddev:  %.4f\n", rep.stddev)
			fmt.Printf("hit rate:       %.4f\n", rep.hitRate)
			fmt.Printf("bonus rate:     %.6f\n", rep.bonusRate)
			return nil
		},
	}

	cmd.Flags().IntVarP(&spins, "spins", "n", 100000, "number of base spins")
	cmd.Flags().Float64VarP(&bet, "bet", "b", 1, "bet per spin")
	cmd.Flags().StringVar(&serverSeed, "server-seed", "simulation-server-seed", "server seed for the draw stream")
	cmd.Flags().StringVar(&clientSeed, "client-seed", "simulation-client-seed", "client seed for the draw stream")
	cmd.Flags().StringVar(&configPath, "game-config", "", "game config file or directory (defaults to built-in tables)")
	return cmd
}

type report struct {
	rtp       float64
	stddev    float64
	hitRate   float64
	bonusRate float64
}

// simulate plays seeded base spins, following every triggered bonus
// run to settlement, and reports per-spin return statistics.
func simulate(cfg *engine.Config, spins int, bet float64, serverSeed, clientSeed string) (*report, error) {
	if spins <= 0 {
		return nil, fmt.Errorf("spins must be positive")
	}
	if bet <= 0 {
		return nil, fmt.Errorf("bet must be positive")
	}
	betDec := decimal.NewFromFloat(bet)

	returns := make([]float64, 0, spins)
	hits := 0
	bonuses := 0

	for n := 0; n < spins; n++ {
		src := rng.NewStream(serverSeed, clientSeed, uint64(n))

		out, err := engine.Spin(cfg, engine.Request{Bet: betDec, Mode: engine.ModeBase}, src)
		if err != nil {
			return nil, fmt.Errorf("spin %d: %w", n, err)
		}
		total := out.Payout

		if out.BonusTrigger != engine.ModeBase {
			bonuses++
			bonus, err := engine.EnterBonus(cfg, out.BonusTrigger, src)
			if err != nil {
				return nil, fmt.Errorf("spin %d: %w", n, err)
			}
			for bonus.Active() {
				if _, _, err := bonus.PlaySpin(cfg, betDec, src); err != nil {
					return nil, fmt.Errorf("spin %d bonus: %w", n, err)
				}
			}
			total = total.Add(bonus.Settle())
		}

		ret, _ := total.Div(betDec).Float64()
		returns = append(returns, ret)
		if ret > 0 {
			hits++
		}
	}

	mean, std := stat.MeanStdDev(returns, nil)
	return &report{
		rtp:       mean,
		stddev:    std,
		hitRate:   float64(hits) / float64(spins),
		bonusRate: float64(bonuses) / float64(spins),
	}, nil
}
