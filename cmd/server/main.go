package main

import (
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/logging"
	"github.com/inkwell/internal/mail"
	"github.com/inkwell/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("refusing to start")
	}
	if cfg.Server.SessionSecret == config.DefaultSessionSecret {
		logging.Warn().Msg("using the development session secret, set SESSION_SECRET")
	}
	gin.SetMode(cfg.Server.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.Database.Path); err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to initialize database")
	}

	var mailer mail.Sender = mail.LogSender{}
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password)
	} else {
		logging.Warn().Msg("SMTP_HOST not set, outgoing mail will only be logged")
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(db.DB, router.Options{
		SessionSecret:      cfg.Server.SessionSecret,
		SiteBaseURL:        cfg.Server.SiteBaseURL,
		AllowedHosts:       cfg.Server.AllowedHosts,
		TrustedProxies:     cfg.Server.TrustedProxies,
		MailFrom:           cfg.Mail.From,
		Mailer:             mailer,
		ShareRatePerMinute: cfg.Share.RequestsPerMinute,
		ShareBurst:         cfg.Share.Burst,
	})

	logging.Info().Str("addr", cfg.Server.ListenAddr).Msg("starting server")
	if err := r.Run(cfg.Server.ListenAddr); err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("failed to run server")
	}
}
