// cmd/legalrisk-server wires the contract risk pipeline behind a thin gin
// HTTP surface: submit a PDF, poll status, fetch the result. Grounded on
// legal-gateway/main.go's service wiring (gin + pgxpool + redis + zap).
// The feedback CRUD, admin routes, and frontend static serving that
// legal-gateway also hosted are out of scope per spec.md and are not
// reproduced here.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"legalrisk/internal/categorydetector"
	"legalrisk/internal/compound"
	"legalrisk/internal/config"
	"legalrisk/internal/docproc"
	"legalrisk/internal/embeddings"
	"legalrisk/internal/fixgen"
	"legalrisk/internal/jobs"
	"legalrisk/internal/logging"
	"legalrisk/internal/metrics"
	"legalrisk/internal/modelclient"
	"legalrisk/internal/orchestrator"
	"legalrisk/internal/riskanalyzer"
	"legalrisk/internal/tracing"
	"legalrisk/internal/vectorstore"
)

func main() {
	cfg := config.Load()
	metrics.MustRegister(prometheus.DefaultRegisterer)

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	tracer, err := tracing.New(ctx, "legalrisk-server", cfg.Observability.OTLPEndpoint, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	embedder := embeddings.NewService(getenv("EMBEDDING_BASE_URL", "http://localhost:11434"), getenv("EMBEDDING_MODEL", "all-minilm:latest"), logger)

	store := vectorstore.New(pool, embedder, cfg.TargetCategories, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure vector store schema", zap.Error(err))
	}
	if err := store.EnsureSeeded(ctx); err != nil {
		logger.Fatal("failed to seed prototype collection", zap.Error(err))
	}

	modelClient := modelclient.New(cfg.ModelClient, tracer, logger)

	docProcessor := docproc.New(embedder, cfg.Chunking, logger)
	detector := categorydetector.New(store, cfg.Zones)
	analyzer := riskanalyzer.New(modelClient, logger)
	fixer := fixgen.New(store, modelClient, logger)
	compoundDetector := compound.New(modelClient, logger)
	registry := jobs.New(redisClient, logger)

	pipeline := orchestrator.New(docProcessor, detector, analyzer, fixer, compoundDetector, registry, logger)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal("failed to create upload directory", zap.Error(err))
	}

	router := newRouter(pipeline, registry, cfg, logger)

	logger.Info("legalrisk server listening", zap.String("addr", cfg.HTTPAddr))
	if err := router.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newRouter(pipeline *orchestrator.Orchestrator, registry *jobs.Registry, cfg config.Config, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/analyze", func(c *gin.Context) {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		defer file.Close()

		destPath := filepath.Join(cfg.UploadDir, header.Filename)
		dest, err := os.Create(destPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
			return
		}
		defer dest.Close()

		if _, err := io.Copy(dest, file); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
			return
		}

		id := pipeline.Submit(header.Filename, destPath)
		c.JSON(http.StatusAccepted, gin.H{"analysis_id": id})
	})

	r.GET("/analyze/:id/status", func(c *gin.Context) {
		record, err := registry.Status(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"analysis_id": record.AnalysisID,
			"status":      record.Status,
			"progress":    record.Progress,
		})
	})

	r.GET("/analyze/:id/result", func(c *gin.Context) {
		result, err := registry.Result(c.Param("id"))
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		case errors.Is(err, jobs.ErrStillProcessing):
			c.JSON(http.StatusAccepted, gin.H{"status": "still processing"})
		case err != nil:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, result)
		}
	})

	if logger != nil {
		logger.Debug("routes registered", zap.Int("count", len(r.Routes())))
	}
	return r
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
