// Command graphstream-client 是一个参考客户端：连接一台 graphstream 服务端，
// 请求一次初始快照，然后打印每一帧收到的节点位置，断线时按 §4.6 的策略重连。
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dep2p/graphstream/internal/core/control"
	"github.com/dep2p/graphstream/internal/core/session"
	"github.com/dep2p/graphstream/internal/transport/ws"
	"github.com/dep2p/graphstream/pkg/interfaces"
	"github.com/dep2p/graphstream/pkg/lib/log"
	"github.com/dep2p/graphstream/pkg/types"
)

var logger = log.Logger("cmd/graphstream-client")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "graphstream-client:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		url          = flag.String("url", "ws://127.0.0.1:8080/ws", "WebSocket URL of the graphstream server")
		writeTimeout = flag.Duration("write-timeout", 5*time.Second, "per-write timeout")
		randomize    = flag.Bool("randomize", false, "ask the server to randomize node positions once connected")
		verbose      = flag.Bool("verbose", false, "enable debug-level logging")
	)
	flag.Parse()

	setupLogging(*verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logger.Info("received signal, disconnecting", "signal", sig.String())
		cancel()
	}()

	client := ws.NewClient(*url, *writeTimeout)

	handlers := ws.Handlers{
		OnStateChange: func(from, to session.ConnState) {
			logger.Info("connection state changed", "from", from, "to", to)
		},
		OnReady: func(ctx context.Context, conn interfaces.Conn) {
			if err := ws.SendControl(ctx, conn, control.NewRequestInitialData()); err != nil {
				logger.Warn("failed to request initial data", "err", err)
				return
			}
			if *randomize {
				if err := ws.SendControl(ctx, conn, control.NewEnableRandomization(true)); err != nil {
					logger.Warn("failed to request randomization", "err", err)
				}
			}
		},
		OnSnapshot: func(nodes []types.Node, clamped bool) {
			fmt.Printf("snapshot: %d nodes clamped=%v\n", len(nodes), clamped)
			for _, n := range nodes {
				fmt.Printf("  slot=%d pos=(%.3f, %.3f, %.3f)\n", n.Slot, n.Position.X, n.Position.Y, n.Position.Z)
			}
		},
		OnControl: func(msg any) {
			logger.Debug("received control message", "msg", msg)
		},
	}

	logger.Info("connecting", "url", *url)
	if err := client.Run(ctx, handlers); err != nil && ctx.Err() == nil {
		return fmt.Errorf("client run: %w", err)
	}
	return nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log.SetDefault(log.New(os.Stderr, &slog.HandlerOptions{Level: level}))
}
