package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"

	annotationhandler "vcc/internal/annotation/handler"
	annotationservice "vcc/internal/annotation/service"
	commentmemory "vcc/internal/annotation/store/memory"
	commentpostgres "vcc/internal/annotation/store/postgres"
	authhandler "vcc/internal/auth/handler"
	"vcc/internal/auth/password"
	authservice "vcc/internal/auth/service"
	sessionstore "vcc/internal/auth/store/session"
	"vcc/internal/authz"
	directoryhandler "vcc/internal/directory/handler"
	directoryservice "vcc/internal/directory/service"
	lifecyclehandler "vcc/internal/lifecycle/handler"
	lifecyclemetrics "vcc/internal/lifecycle/metrics"
	lifecycleservice "vcc/internal/lifecycle/service"
	"vcc/internal/notify"
	notifymetrics "vcc/internal/notify/metrics"
	"vcc/internal/notify/sender"
	"vcc/internal/notify/stream"
	"vcc/internal/platform/config"
	"vcc/internal/platform/metrics"
	"vcc/internal/platform/postgres"
	redisclient "vcc/internal/platform/redis"
	profilememory "vcc/internal/profile/store/memory"
	profilepostgres "vcc/internal/profile/store/postgres"
	rlmetrics "vcc/internal/ratelimit/metrics"
	rlservice "vcc/internal/ratelimit/service"
	"vcc/internal/ratelimit/store/bucket"
	httptransport "vcc/internal/transport/http"
	"vcc/pkg/platform/audit"
	auditmemory "vcc/pkg/platform/audit/store/memory"
	auditpostgres "vcc/pkg/platform/audit/store/postgres"
	"vcc/pkg/platform/middleware/throttle"
	txcontext "vcc/pkg/platform/tx"
)

const (
	bcryptCost     = 12
	requestTimeout = 30 * time.Second
	flushTimeout   = 5 * time.Second
)

// profileStore is everything the services need from profile persistence.
type profileStore interface {
	authservice.ProfileStore
	directoryservice.ProfileReader
	notify.RecipientDirectory
}

type auditStore interface {
	audit.Appender
	directoryservice.AuditReader
}

type stores struct {
	profiles profileStore
	sessions authservice.SessionStore
	comments annotationservice.CommentStore
	audit    auditStore
	tx       txcontext.Runner
}

type application struct {
	router   http.Handler
	auth     *authservice.Service
	limiter  *rlservice.Service
	throttle *throttle.Limiter
	mailer   *notify.Dispatcher
	log      *slog.Logger
	closers  []func()
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*application, error) {
	app := &application{log: log}
	health := map[string]httptransport.HealthCheck{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)

	st, db, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if db != nil {
		app.closers = append(app.closers, func() { _ = db.Close() })
		health["postgres"] = db.PingContext
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		app.close(log)
		return nil, err
	}
	var primary rlservice.BucketStore
	if rc != nil {
		app.closers = append(app.closers, func() { _ = rc.Close() })
		health["redis"] = rc.Health
		primary = bucket.NewRedis(rc.Client, bucket.WithKeyPrefix(cfg.RateLimit.KeyPrefix))
		if db == nil {
			st.sessions = sessionstore.NewRedis(rc.Client)
		}
	} else {
		log.Warn("REDIS_URL not set, rate limits are per process")
	}

	limiterOpts := []rlservice.Option{
		rlservice.WithBackendTimeout(cfg.RateLimit.BackendTimeout),
		rlservice.WithDisabled(cfg.RateLimit.Disabled),
		rlservice.WithAuditor(st.audit),
		rlservice.WithLogger(log),
		rlservice.WithMetrics(rlmetrics.New(reg)),
	}
	if primary != nil {
		limiterOpts = append(limiterOpts, rlservice.WithPrimary(primary))
	}
	app.limiter, err = rlservice.New(bucket.New(), limiterOpts...)
	if err != nil {
		app.close(log)
		return nil, err
	}

	guard := authz.NewGuard(authz.WithAuditor(st.audit), authz.WithLogger(log))
	app.mailer = notify.New(newSender(cfg.Email, log), st.profiles,
		notify.WithBaseURL(cfg.Server.BaseURL),
		notify.WithWorkers(cfg.Email.Workers),
		notify.WithQueueSize(cfg.Email.Queue),
		notify.WithSendTimeout(cfg.Email.Timeout),
		notify.WithLogger(log),
		notify.WithMetrics(notifymetrics.New(reg)),
	)

	app.auth, err = authservice.New(st.profiles, st.sessions, password.NewHasher(bcryptCost),
		authservice.WithRateLimiter(app.limiter),
		authservice.WithAuthorizer(guard),
		authservice.WithMailer(app.mailer),
		authservice.WithTxRunner(st.tx),
		authservice.WithAuditor(st.audit),
		authservice.WithLogger(log),
		authservice.WithMetrics(httpMetrics),
	)
	if err != nil {
		app.close(log)
		return nil, err
	}

	lifecycleOpts := []lifecycleservice.Option{
		lifecycleservice.WithRateLimiter(app.limiter),
		lifecycleservice.WithAuthorizer(guard),
		lifecycleservice.WithPublisher(app.mailer),
		lifecycleservice.WithTxRunner(st.tx),
		lifecycleservice.WithAuditor(st.audit),
		lifecycleservice.WithLogger(log),
		lifecycleservice.WithMetrics(lifecyclemetrics.New(reg)),
		lifecycleservice.WithTracer(otel.Tracer("vcc/internal/lifecycle")),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := stream.NewClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			app.close(log)
			return nil, err
		}
		app.closers = append(app.closers, func() { closeKafka(client, log) })
		lifecycleOpts = append(lifecycleOpts, lifecycleservice.WithPublisher(
			stream.New(client, cfg.Kafka.Topic, stream.WithLogger(log)),
		))
	}
	lifecycle, err := lifecycleservice.New(st.profiles, app.auth, lifecycleOpts...)
	if err != nil {
		app.close(log)
		return nil, err
	}

	comments, err := annotationservice.New(st.comments, st.profiles,
		annotationservice.WithAuthorizer(guard),
		annotationservice.WithAuditor(st.audit),
		annotationservice.WithLogger(log),
	)
	if err != nil {
		app.close(log)
		return nil, err
	}

	directory, err := directoryservice.New(st.profiles,
		directoryservice.WithAuditReader(st.audit),
		directoryservice.WithAuthorizer(guard),
		directoryservice.WithLogger(log),
	)
	if err != nil {
		app.close(log)
		return nil, err
	}

	proxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		app.close(log)
		return nil, err
	}

	app.throttle = throttle.New(cfg.Server.GlobalRPS, cfg.Server.GlobalBurst, log)
	app.router = httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Sessions:       app.auth,
		SessionCookie:  authhandler.SessionCookie,
		Metrics:        httpMetrics,
		Gatherer:       reg,
		Throttle:       app.throttle.Handler,
		RequestTimeout: requestTimeout,
		Health:         health,
		TrustedProxies: proxies,
	},
		authhandler.New(app.auth, log,
			authhandler.WithSecureCookies(cfg.Server.IsProduction()),
			authhandler.WithAdminToken(cfg.Admin.Token),
		),
		lifecyclehandler.New(lifecycle, log),
		annotationhandler.New(comments, log),
		directoryhandler.New(directory, log),
	)
	return app, nil
}

// openStores returns Postgres-backed stores when a database is configured
// and in-memory stores otherwise. The *sql.DB is nil in the latter case.
func openStores(ctx context.Context, cfg config.Database, log *slog.Logger) (*stores, *sql.DB, error) {
	if cfg.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return &stores{
			profiles: profilememory.New(),
			sessions: sessionstore.New(),
			comments: commentmemory.New(),
			audit:    auditmemory.NewInMemoryStore(),
			tx:       txcontext.NopRunner{},
		}, nil, nil
	}

	db, err := postgres.OpenFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return &stores{
		profiles: profilepostgres.New(db),
		sessions: sessionstore.NewPostgres(db),
		comments: commentpostgres.New(db),
		audit:    auditpostgres.New(db),
		tx:       txcontext.NewSQLRunner(db),
	}, db, nil
}

func newSender(cfg config.Email, log *slog.Logger) notify.Sender {
	if cfg.APIKey == "" {
		log.Warn("RESEND_API_KEY not set, emails will be skipped")
		return sender.Unconfigured{}
	}
	return sender.NewResend(cfg.APIKey, cfg.From,
		sender.WithEndpoint(cfg.Endpoint),
		sender.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
}

func closeKafka(client *kgo.Client, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := client.Flush(ctx); err != nil {
		log.Warn("kafka flush incomplete", "error", err)
	}
	client.Close()
}

// bootstrapAdmin seeds the operator account named in the environment.
func (a *application) bootstrapAdmin(ctx context.Context, cfg config.Admin) error {
	if cfg.BootstrapEmail == "" {
		return nil
	}
	principal, err := a.auth.BootstrapAdmin(ctx, cfg.BootstrapEmail, cfg.BootstrapPassword)
	if err != nil {
		return err
	}
	a.log.InfoContext(ctx, "admin account ready", "profile_id", principal.ID.String())
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *application) close(log *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	log.Debug("resources released")
}
