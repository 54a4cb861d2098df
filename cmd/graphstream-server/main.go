// Command graphstream-server 启动一个知识图谱实时流服务端：接受 WebSocket
// 连接，驱动固定步长的力导向物理循环，把节点位置快照广播给所有就绪会话。
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/dep2p/graphstream/internal/config"
	"github.com/dep2p/graphstream/internal/core/codec"
	"github.com/dep2p/graphstream/internal/core/compress"
	"github.com/dep2p/graphstream/internal/core/hub"
	"github.com/dep2p/graphstream/internal/core/identity"
	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/internal/core/msgrate"
	"github.com/dep2p/graphstream/internal/core/physics"
	"github.com/dep2p/graphstream/internal/core/session"
	"github.com/dep2p/graphstream/internal/core/simulation"
	"github.com/dep2p/graphstream/internal/transport/ws"
	"github.com/dep2p/graphstream/pkg/interfaces"
	"github.com/dep2p/graphstream/pkg/lib/log"
	"github.com/dep2p/graphstream/pkg/types"
)

var logger = log.Logger("cmd/graphstream-server")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "graphstream-server:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "path to a YAML configuration file (defaults built in if omitted)")
		listenAddr  = flag.String("listen", "", "override transport.listen_addr from the config")
		metricsAddr = flag.String("metrics", ":9090", "listen address for the /metrics endpoint")
		useParallel = flag.Bool("parallel", false, "use the parallel physics kernel instead of the scalar one")
		verbose     = flag.Bool("verbose", false, "enable debug-level logging")
	)
	flag.Parse()

	setupLogging(*verbose)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *listenAddr != "" {
		cfg.Transport.ListenAddr = *listenAddr
	}

	ids := identity.NewTable()
	reg := metrics.NewRegistry()
	provider := appconfig.NewProvider(cfg)

	kernel := buildKernel(cfg.Physics, *useParallel)

	gate := compress.NewGate()
	if cfg.Session.CompressionThreshold > 0 {
		gate.Threshold = cfg.Session.CompressionThreshold
	}

	broadcastHub := hub.New(makeEncoder(gate), reg)

	simCfg := simulation.Config{
		UpdateRate:   cfg.Simulation.UpdateRate,
		AckWindow:    cfg.Simulation.AckWindow,
		RandomRadius: cfg.Simulation.RandomRadius,
		Params:       cfg.Physics.ToParams(),
	}
	loop := simulation.New(kernel, broadcastHub, simCfg, nil, reg)

	sessCfg := session.Config{
		QueueCapacity: cfg.Session.MaxQueueSize,
		RateLimit: msgrate.Config{
			Limit:  cfg.Session.MessageRateLimit,
			Window: cfg.Session.MessageTimeWindow,
		},
	}

	server := ws.NewServer(loop, broadcastHub, ids, cfg.Transport, sessCfg, reg, provider)

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Transport.Path, server.ServeHTTP)
	mux.HandleFunc("/graph", server.IngestHandler)

	httpServer := &http.Server{
		Addr:    cfg.Transport.ListenAddr,
		Handler: mux,
	}

	metricsServer := &http.Server{
		Addr:    *metricsAddr,
		Handler: promhttp.HandlerFor(reg.PrometheusRegistry(), promhttp.HandlerOpts{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)
	loop.Resume()

	errs := make(chan error, 2)
	go func() {
		logger.Info("serving websocket connections", "addr", cfg.Transport.ListenAddr, "path", cfg.Transport.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("serving metrics", "addr", *metricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errs:
		logger.Error("server error, shutting down", "err", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	return nil
}

func loadConfig(path string) (*appconfig.Config, error) {
	if path == "" {
		return appconfig.NewConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return appconfig.Load(data)
}

// buildKernel picks the scalar or parallel force kernel, clamped to the
// configured physics parameters.
func buildKernel(p appconfig.PhysicsConfig, parallel bool) interfaces.Kernel {
	params := p.ToParams()
	if parallel {
		return physics.ParallelKernel{Params: params}
	}
	return physics.ScalarKernel{Params: params}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log.SetDefault(log.New(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// makeEncoder composes the binary record codec with the compression gate,
// producing the Encoder the hub uses to turn a snapshot into wire bytes.
func makeEncoder(gate *compress.Gate) hub.Encoder {
	return func(nodes []types.Node) []byte {
		return gate.EncodeFrame(codec.Encode(nodes))
	}
}
