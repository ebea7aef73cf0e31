package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/voxel-world/internal/api"
	"github.com/annel0/voxel-world/internal/app"
	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/observability"
)

func main() {
	// Конфигурация: путь из VOXEL_CONFIG, иначе значения по умолчанию
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logOpts, err := cfg.LogOptions()
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации логирования: %v", err)
	}
	if err := logging.InitDefaultLogger("server", logOpts); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск voxel-world: seed=%d, чанк %dx%d, дальность прорисовки %d",
		cfg.World.Seed, cfg.World.ChunkSize.Width, cfg.World.ChunkSize.Height, cfg.World.DrawDistance)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := observability.ShutdownFunc(observability.Noop)
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = observability.InitTelemetry(ctx, observability.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    true,
		})
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
			shutdownTelemetry = observability.Noop
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sim, err := app.NewFromConfig(cfg, reg)
	if err != nil {
		logging.Error("❌ Ошибка создания симуляции: %v", err)
		os.Exit(1)
	}

	restPort := ":" + strconv.Itoa(cfg.Server.GetHTTPPort())
	server := api.NewRestServer(api.Config{
		Port:       restPort,
		Simulation: sim,
		Registry:   reg,
	})

	go func() {
		if err := server.Start(); err != nil {
			logging.Error("❌ Ошибка REST API: %v", err)
			stop()
		}
	}()

	logging.Info("✅ Сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s/api/status", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("   📊 Метрики: http://localhost%s/metrics", restPort)

	if err := sim.Run(ctx, cfg.Server.FrameRate); err != nil {
		logging.Error("❌ Ошибка цикла симуляции: %v", err)
	}

	logging.Info("📡 Завершение работы...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки OpenTelemetry: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
