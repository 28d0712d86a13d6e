// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"leadflow-workers/internal/broadcast"
	"leadflow-workers/internal/common/camunda"
	"leadflow-workers/internal/common/config"
	"leadflow-workers/internal/common/database"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/common/observability"
	"leadflow-workers/internal/crmsync"
	"leadflow-workers/internal/flowmanager"
	"leadflow-workers/internal/industry"
	"leadflow-workers/internal/industry/clinics"
	"leadflow-workers/internal/industry/coaching"
	"leadflow-workers/internal/industry/ecommerce"
	"leadflow-workers/internal/models"
	"leadflow-workers/internal/notifications"
	"leadflow-workers/internal/session"

	ec "leadflow-workers/internal/workers/broadcast/execute-campaign"
	hm "leadflow-workers/internal/workers/leadflow/handle-message"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("Starting worker manager...", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name, log, observability.WithJaeger(cfg.App.JaegerEndpoint))
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres open failed", zap.Error(err))
	}
	defer pg.Close()
	if err := database.WaitReady(ctx, "PostgreSQL", 15, 2*time.Second, log, pg.Ping); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("postgres migration failed", zap.Error(err))
	}
	log.Info("PostgreSQL connected successfully", nil)

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := database.WaitReady(ctx, "Redis", 10, time.Second, log, rdb.Ping); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	log.Info("Redis connected successfully", nil)

	// --- Delivery channels and CRM ---
	senders, err := buildSenders(ctx, cfg.Integrations, log)
	if err != nil {
		zapLog.Fatal("channel setup failed", zap.Error(err))
	}
	syncer := crmsync.NewSyncer(buildCRMClients(cfg.Integrations, cfg.Camunda.RequestTimeout, log), cfg.Automation.SendTimeoutDuration(), log)

	// --- Broadcast ---
	campaigns := broadcast.NewService(
		broadcast.NewPostgresCampaignStore(pg.DB),
		broadcast.NewPostgresAudienceSource(pg.DB),
		senders,
		log,
		broadcast.WithConcurrency(cfg.Automation.BroadcastConcurrency),
		broadcast.WithSendTimeout(cfg.Automation.SendTimeoutDuration()),
	)
	scheduler, err := broadcast.NewScheduler(cfg.Automation.SchedulerSpec, campaigns, log)
	if err != nil {
		zapLog.Fatal("invalid scheduler spec", zap.String("spec", cfg.Automation.SchedulerSpec), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// --- Flow manager ---
	manager := flowmanager.New(
		industry.NewRegistry(coaching.New(), clinics.New(), ecommerce.New()),
		notifications.NewGenerator(),
		log,
		flowmanager.WithObservability(obs),
		flowmanager.WithCRM(syncer, models.CRMProvider(cfg.Automation.CRMProvider)),
		flowmanager.WithCampaigns(campaigns),
		flowmanager.WithAlerts(notifications.NewAlertDispatcher(senders, cfg.Automation.AlertEmail, cfg.Automation.SendTimeoutDuration(), log)),
	)
	sessions := session.NewStore(rdb.Client, cfg.Database.Redis.KeyPrefix, cfg.Automation.SessionTTLDuration())

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected successfully", nil)

	// --- Workers ---
	var workers []*camunda.Worker
	startWorker := func(name, taskType string, handler camunda.JobHandler) {
		wc := config.GetWorkerConfig(cfg, name)
		if !wc.Enabled {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			return
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, handler, log))
	}

	startWorker("handle-message", hm.TaskType,
		hm.NewHandler(hm.LoadConfig(config.GetWorkerConfig(cfg, "handle-message")), sessions, manager, log))
	startWorker("execute-campaign", ec.TaskType,
		ec.NewHandler(ec.LoadConfig(config.GetWorkerConfig(cfg, "execute-campaign")), campaigns, log))

	log.Info("Workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := rdb.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
		if err := pg.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "postgres unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	srv := &http.Server{Addr: cfg.App.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"addr": cfg.App.MetricsAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping metrics server", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped", nil)
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
