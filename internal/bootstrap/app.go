package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"eduvantage/internal/ai"
	"eduvantage/internal/config"
	"eduvantage/internal/mail"
	"eduvantage/internal/model"
	mysqlClient "eduvantage/internal/platform/mysql"
	rabbitmqClient "eduvantage/internal/platform/rabbitmq"
	redisClient "eduvantage/internal/platform/redis"
	"eduvantage/internal/platform/supabase"
	"eduvantage/internal/repository"
	"eduvantage/internal/search"
	"eduvantage/internal/worker"
)

// App is the assistant server's dependency bundle: every long-lived client is
// constructed exactly once here and passed by reference from then on.
type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	MessageWorker *worker.MessagePersistWorker
	LLMClient     *ai.OpenAICompatibleClient
	Supabase      *supabase.Client
	Tavily        *search.TavilyClient

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Message{}, &model.Reminder{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	messageRepo := repository.NewMessageRepository(mysqlDB)
	messageWorker := worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue)
	if err := messageWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start message worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		MessageWorker: messageWorker,
		LLMClient:     ai.NewOpenAICompatibleClient(),
		Supabase: supabase.NewClient(supabase.Config{
			URL:        cfg.Supabase.URL,
			ServiceKey: cfg.Supabase.ServiceKey,
			Table:      cfg.Supabase.Table,
		}),
		Tavily: search.NewTavilyClient(search.TavilyConfig{
			BaseURL: cfg.Tavily.BaseURL,
			APIKey:  cfg.Tavily.APIKey,
		}),
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

// MailerApp is the reminder service's slimmer bundle.
type MailerApp struct {
	Config  *config.Config
	MySQL   *gorm.DB
	Mailjet *mail.MailjetClient

	StartedAt time.Time
}

func NewMailer(ctx context.Context) (*MailerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Reminder{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	return &MailerApp{
		Config: cfg,
		MySQL:  mysqlDB,
		Mailjet: mail.NewMailjetClient(mail.MailjetConfig{
			BaseURL:   cfg.Mail.MailjetBaseURL,
			APIKey:    cfg.Mail.APIKey,
			SecretKey: cfg.Mail.SecretKey,
		}),
		StartedAt: time.Now(),
	}, nil
}

func (a *MailerApp) Close() error {
	if a.MySQL == nil {
		return nil
	}
	sqlDB, err := a.MySQL.DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}
