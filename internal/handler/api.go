package handler

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/mail"
	"github.com/inkwell/internal/service"
	"gorm.io/gorm"
)

// Options configures the public handlers.
type Options struct {
	SiteName string
	// SiteBaseURL, when set, replaces the request scheme and host in absolute links.
	SiteBaseURL string
	// AllowedHosts are checked against the request Host when SiteBaseURL is empty.
	AllowedHosts []string
	// TrustedProxies may set X-Forwarded-Proto.
	TrustedProxies []string
	MailFrom       string
	Mailer         mail.Sender
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	posts       *service.PostService
	tags        *service.TagService
	comments    *service.CommentService
	shares      *service.ShareService
	siteName       string
	siteBaseURL    string
	allowedHosts   []string
	trustedProxies []*net.IPNet
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, opts Options) *API {
	mailer := opts.Mailer
	if mailer == nil {
		mailer = mail.LogSender{}
	}

	siteName := strings.TrimSpace(opts.SiteName)
	if siteName == "" {
		siteName = "Inkwell"
	}

	return &API{
		db:             db,
		posts:          service.NewPostService(db),
		tags:           service.NewTagService(db),
		comments:       service.NewCommentService(db),
		shares:         service.NewShareService(mailer, opts.MailFrom),
		siteName:       siteName,
		siteBaseURL:    strings.TrimRight(strings.TrimSpace(opts.SiteBaseURL), "/"),
		allowedHosts:   opts.AllowedHosts,
		trustedProxies: parseProxies(opts.TrustedProxies),
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	if _, exists := payload["errors"]; !exists {
		payload["errors"] = fieldErrors{}
	}

	c.HTML(status, template, payload)
}
