package router

import (
	"html/template"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/handler"
	"github.com/inkwell/internal/logging"
	"github.com/inkwell/internal/mail"
	"github.com/inkwell/internal/middleware"
	"github.com/inkwell/web"
	"gorm.io/gorm"
)

// Options carries everything SetupRouter needs besides the database.
type Options struct {
	SessionSecret      string
	SiteName           string
	SiteBaseURL        string
	AllowedHosts       []string
	TrustedProxies     []string
	MailFrom           string
	Mailer             mail.Sender
	ShareRatePerMinute int
	ShareBurst         int
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, opts Options) *gin.Engine {
	r := gin.New()
	// 只信任配置的代理，否则 X-Forwarded-For 可被客户端伪造
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logging.Error().Err(err).Strs("proxies", opts.TrustedProxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(logging.RequestLogger(), gin.Recovery())

	secret := strings.TrimSpace(opts.SessionSecret)
	if secret == "" {
		logging.Warn().Msg("no session secret configured, using development secret")
		secret = "inkwell-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 60 * 60, HttpOnly: true})
	r.Use(sessions.Sessions("inkwell_session", store))

	tmpl, err := web.Templates(templateFuncs())
	if err != nil {
		panic(err)
	}
	r.SetHTMLTemplate(tmpl)

	api := handler.NewAPI(gdb, handler.Options{
		SiteName:    opts.SiteName,
		SiteBaseURL:    opts.SiteBaseURL,
		AllowedHosts:   opts.AllowedHosts,
		TrustedProxies: opts.TrustedProxies,
		MailFrom:       opts.MailFrom,
		Mailer:         opts.Mailer,
	})

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.GET("/", api.ShowPostList)
	r.GET("/tag/:slug/", api.ShowPostList)

	r.GET("/:year/:month/:day/:slug/", api.ShowPostDetail)
	r.POST("/:year/:month/:day/:slug/", api.ShowPostDetail)

	share := r.Group("/share")
	share.Use(middleware.RateLimitPosts(opts.ShareRatePerMinute, opts.ShareBurst))
	{
		share.GET("/:id/", api.SharePost)
		share.POST("/:id/", api.SharePost)
	}

	return r
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("Jan 2, 2006, 15:04")
		},
		"truncateWords": truncateWords,
	}
}

// truncateWords keeps the first limit words of s, appending an ellipsis when cut.
func truncateWords(s string, limit int) string {
	words := strings.Fields(s)
	if limit <= 0 || len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + " …"
}
