package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridarena/server"
)

// GridArena 入口：启动 HTTP + WebSocket 服务，初始化存储与房间管理器
func main() {
	var (
		addr     string
		logFile  string
		logLevel string
		pgDSN    string
	)
	flag.StringVar(&addr, "addr", ":8080", "server listen address, e.g. :8080")
	flag.StringVar(&logFile, "log-file", "app.log", "log file path")
	flag.StringVar(&logLevel, "log-level", "debug", "log level: debug/info/warn/error")
	flag.StringVar(&pgDSN, "pg-dsn", "", "postgres DSN for player position persistence; empty = in-memory")
	flag.Parse()

	// 使用第三方 zap 日志库写入文件（带滚动）
	if err := server.InitLogger(logFile, logLevel); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	// 选择存储实现：默认内存，带 -pg-dsn 时走 PostgreSQL
	var store server.PlayerStore
	if pgDSN != "" {
		pg, err := server.NewPostgresStore(pgDSN)
		if err != nil {
			server.Log.Fatalf("postgres init: %v", err)
		}
		store = pg
		server.Log.Info("player positions persisted to postgres")
	} else {
		store = server.NewMemoryStore()
		server.Log.Info("player positions kept in memory")
	}
	defer store.Close()

	rm := server.GetRoomManager()
	rm.Configure(store)
	// 先预创建一个默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom("room-1")

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	// 前后端分离：将 / 映射到 web 目录的静态资源
	mux.Handle("/", http.FileServer(http.Dir("web")))
	// 管理与监控接口
	mux.HandleFunc("/admin/config", server.HandleAdminConfig)
	mux.HandleFunc("/metrics", server.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		server.Log.Infof("GridArena listening on %s; open http://localhost%v/", addr, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）：先停收新连接，再停房间并落盘
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	rm.Shutdown()
	// 给房间 Tick 协程留出最后一轮落盘的时间
	time.Sleep(200 * time.Millisecond)
}
