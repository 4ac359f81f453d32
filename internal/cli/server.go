package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"learning-exam-service/internal/app"
	"learning-exam-service/internal/config"
	"learning-exam-service/internal/infra/memory"
	"learning-exam-service/internal/infra/postgres"
	infraredis "learning-exam-service/internal/infra/redis"
	"learning-exam-service/internal/reward"
	transport "learning-exam-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the exam server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// ledger is the points store surface the server needs: crediting and reading totals.
type ledger interface {
	reward.PointsLedger
	transport.PointsReader
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.AssessmentLoader = memory.NewStaticAssessmentLoader(sampleAssessments())
	if pool != nil {
		pgLoader := postgres.NewAssessmentLoader(pool)
		for _, a := range sampleAssessments() {
			if err := pgLoader.SeedAssessment(ctx, a); err != nil {
				return err
			}
		}
		loader = pgLoader
	}

	assessmentTTL := config.TTLDuration(cfg.Assessment.TTL, 10*time.Minute)
	var assessments app.AssessmentRepository
	if redisClient != nil {
		assessments = infraredis.NewAssessmentRepository(redisClient, loader, assessmentTTL)
	} else {
		assessments = memory.NewAssessmentRepository(loader, assessmentTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var points ledger
	var certificates app.CertificateRepository
	var rewarder *reward.Rewarder
	switch {
	case pool != nil:
		points = postgres.NewPointsLedger(pool)
		certificates = postgres.NewCertificateStore(pool)
		rewarder = reward.NewAtomicRewarder(postgres.NewAwarder(pool))
	case redisClient != nil:
		points = infraredis.NewPointsLedger(redisClient)
		certificates = memory.NewCertificateStore()
	default:
		points = memory.NewPointsLedger()
		certificates = memory.NewCertificateStore()
	}

	renderTTL := config.TTLDuration(cfg.Certificate.RenderTTL, 24*time.Hour)
	var renderCache app.RenderCache
	if redisClient != nil {
		renderCache = infraredis.NewRenderCache(redisClient, renderTTL)
	} else {
		renderCache = memory.NewRenderCache(renderTTL)
	}

	compositor, err := newCompositor(cfg.Certificate)
	if err != nil {
		return err
	}

	if rewarder == nil {
		rewarder = reward.NewRewarder(points, certificates)
	}

	policy := reward.Policy{PassThreshold: cfg.Exam.PassThreshold, PointsDivisor: cfg.Exam.PointsDivisor}
	exams := app.NewExamService(sessions, assessments, rewarder, policy)
	certs := app.NewCertificateService(certificates, renderCache, compositor)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ws/exam", transport.NewWSHandler(exams).ServeWS)
	transport.NewCertificateHandler(certs, points).Register(mux)

	// exam websockets stay open for the whole time limit, so only reads are bounded
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting exam service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
