// cmd/assign-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"autoassign-worker/internal/assign/orchestrator"
	"autoassign-worker/internal/audit"
	"autoassign-worker/internal/clients/projects"
	"autoassign-worker/internal/clients/signals"
	"autoassign-worker/internal/clients/vendors"
	"autoassign-worker/internal/common/auth"
	awsclients "autoassign-worker/internal/common/aws"
	"autoassign-worker/internal/common/config"
	"autoassign-worker/internal/common/database"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/common/observability"
	"autoassign-worker/internal/dedup"
	"autoassign-worker/internal/models"
	"autoassign-worker/internal/notifications"
	"autoassign-worker/internal/repository"
	"autoassign-worker/internal/storage/predictions"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assign manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("assign-manager")
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init projects PostgreSQL with retry ---
	var projectsDB *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		projectsDB, err = database.NewPostgres(cfg.Database.Projects)
		if err != nil {
			return err
		}
		return projectsDB.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "projects PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("projects postgres failed after retries", zap.Error(err))
	}
	defer projectsDB.Close()
	zapLog.Info("projects PostgreSQL connected successfully")

	// --- Init reporting PostgreSQL with retry ---
	var reportingDB *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		reportingDB, err = database.NewPostgres(cfg.Database.Reporting)
		if err != nil {
			return err
		}
		return reportingDB.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "reporting PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("reporting postgres failed after retries", zap.Error(err))
	}
	defer reportingDB.Close()
	zapLog.Info("reporting PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry (audit index, optional) ---
	var runRecorder *audit.Recorder
	if cfg.Audit.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		runRecorder = audit.NewRecorder(esClient, cfg.Audit.Index, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init Redis with retry (dedup guard, optional) ---
	var guard *dedup.Guard
	if cfg.Dedup.Enabled {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		guard = dedup.NewGuard(redisClient.GetClient(), time.Duration(cfg.Dedup.TTLHours)*time.Hour, log)
		zapLog.Info("Redis connected successfully")
	}

	// --- Init AWS clients ---
	s3Client, err := awsclients.NewS3Client(ctx, cfg.Storage.Region)
	if err != nil {
		zapLog.Fatal("s3 client failed", zap.Error(err))
	}

	sqsClient, err := awsclients.NewSQSClient(ctx, cfg.Consumer.Region)
	if err != nil {
		zapLog.Fatal("sqs client failed", zap.Error(err))
	}

	var sesClient *awsclients.SESClient
	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.Direct {
		sesClient, err = awsclients.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
	}

	var opsNotifier *notifications.OpsNotifier
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := awsclients.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		opsNotifier = notifications.NewOpsNotifier(cfg.Notifications.SNS.TopicARN, snsClient, log)
	}
	zapLog.Info("AWS clients initialized")

	// --- Init external service clients ---
	keycloak := auth.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		cfg.Auth.Keycloak.ClientID,
		cfg.Auth.Keycloak.Username,
		cfg.Auth.Keycloak.Password,
	)

	projectsClient := projects.NewClient(
		cfg.APIs.Projects.BaseURL,
		cfg.APIs.Projects.Token,
		cfg.APIs.Projects.UserID,
		config.GetDuration(cfg.APIs.Projects.Timeout),
		log,
	)

	vendorsClient := vendors.NewClient(
		cfg.APIs.Vendors.DirectoryURL,
		cfg.APIs.Vendors.RankingURL,
		cfg.APIs.Vendors.UserID,
		keycloak,
		config.GetDuration(cfg.APIs.Vendors.Timeout),
		log,
	)

	signalsClient := signals.NewClient(
		cfg.APIs.Signals.KeywordsURL,
		cfg.APIs.Signals.EmergencyURL,
		cfg.APIs.Signals.KeywordsEnabled,
		cfg.APIs.Signals.EmergencyEnabled,
		config.GetDuration(cfg.APIs.Signals.Timeout),
		log,
	)

	notifier := notifications.NewNotifier(notifications.Config{
		Enabled:      cfg.Notifications.Email.Enabled,
		QueueURL:     cfg.Notifications.Email.QueueURL,
		From:         cfg.Notifications.Email.From,
		Subject:      cfg.Notifications.Email.Subject,
		TemplateName: cfg.Notifications.Email.TemplateName,
		Direct:       cfg.Notifications.Email.Direct,
	}, sqsClient, sesClient, log)

	zapLog.Info("All external service clients initialized")

	// --- Build the orchestrator ---
	orch := orchestrator.New(orchestrator.Config{
		ConfidenceThreshold: cfg.Assignment.ConfidenceThreshold,
		UnassignedStatuses:  cfg.Assignment.UnassignedStatuses,
		PortalBaseURL:       cfg.Assignment.PortalBaseURL,
		ProjectTypeID:       cfg.Assignment.ProjectTypeID,
		ChangeReason:        cfg.Assignment.ChangeReason,
		DryRun:              cfg.Assignment.DryRun,
	}, orchestrator.Deps{
		Predictions: predictions.NewReader(s3Client, cfg.Storage.Bucket, log),
		Projects:    repository.NewProjectRepository(projectsDB.GetDB(), log),
		Properties:  repository.NewPropertyRepository(reportingDB.GetDB(), log),
		Categories:  repository.NewCategoryRepository(reportingDB.GetDB(), log),
		VideoAudit:  repository.NewVideoAuditRepository(reportingDB.GetDB(), log),
		ProjectsAPI: projectsClient,
		VendorsAPI:  vendorsClient,
		Signals:     signalsClient,
		Notifier:    notifier,
		Outcomes:    runRecorder,
		Guard:       guard,
		Obs:         obs,
		Logger:      log,
	})

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on " + cfg.Consumer.MetricsAddr)
		if err := http.ListenAndServe(cfg.Consumer.MetricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Consume events ---
	done := make(chan struct{})
	go func() {
		defer close(done)
		consume(ctx, cfg, sqsClient, orch, opsNotifier, log, zapLog)
	}()
	zapLog.Info("Consumer started", zap.String("queue", cfg.Consumer.QueueURL))

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping consumer...")
	cancel()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		zapLog.Warn("consumer did not stop in time")
	}

	zapLog.Info("Assign manager stopped gracefully")
}

// consume long-polls the queue and runs one orchestration per message. The
// message is deleted after the run regardless of outcome; the queue's
// redrive policy owns redelivery.
func consume(ctx context.Context, cfg *config.Config, sqsClient *awsclients.SQSClient, orch *orchestrator.Orchestrator, ops *notifications.OpsNotifier, log logger.Logger, zapLog *zap.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		out, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            awssdk.String(cfg.Consumer.QueueURL),
			MaxNumberOfMessages: int32(cfg.Consumer.MaxMessages),
			WaitTimeSeconds:     int32(cfg.Consumer.WaitTimeSeconds),
			VisibilityTimeout:   int32(cfg.Consumer.VisibilityTimeout),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zapLog.Error("receive failed", zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		for _, msg := range out.Messages {
			handleMessage(ctx, cfg, sqsClient, orch, ops, msg, log)
		}
	}
}

func handleMessage(ctx context.Context, cfg *config.Config, sqsClient *awsclients.SQSClient, orch *orchestrator.Orchestrator, ops *notifications.OpsNotifier, msg sqstypes.Message, log logger.Logger) {
	var event models.AssignmentEvent
	if err := json.Unmarshal([]byte(awssdk.ToString(msg.Body)), &event); err != nil || event.SourceKey == "" {
		log.Warn("dropping malformed event", map[string]interface{}{
			"body": awssdk.ToString(msg.Body),
		})
		deleteMessage(ctx, cfg, sqsClient, msg, log)
		return
	}

	decision, err := orch.Run(ctx, event)
	if err != nil {
		log.WithError(err).Error("assignment run failed", map[string]interface{}{
			"key": event.SourceKey,
		})
	} else {
		log.Info("assignment run finished", map[string]interface{}{
			"key":    event.SourceKey,
			"status": string(decision.Status),
		})
		if decision.Status == models.DecisionAssigned {
			ops.AssignmentCompleted(ctx, event.SourceKey, decision.ProjectID, decision)
		}
	}

	deleteMessage(ctx, cfg, sqsClient, msg, log)
}

func deleteMessage(ctx context.Context, cfg *config.Config, sqsClient *awsclients.SQSClient, msg sqstypes.Message, log logger.Logger) {
	_, err := sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      awssdk.String(cfg.Consumer.QueueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		log.WithError(err).Warn("failed to delete message", nil)
	}
}
