package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/logging"
	"github.com/inkwell/internal/service"
)

const (
	sessionCommenterName  = "commenter_name"
	sessionCommenterEmail = "commenter_email"
)

// ShowPostList renders published posts, optionally narrowed to one tag.
func (a *API) ShowPostList(c *gin.Context) {
	ctx := c.Request.Context()
	rawPage, hasPage := c.GetQuery("page")

	filter := service.PostFilter{
		Page:    service.ParsePage(rawPage),
		PerPage: service.PostsPerPage,
	}

	var tag *db.Tag
	if slug := c.Param("slug"); slug != "" {
		found, err := a.tags.GetBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, service.ErrTagNotFound) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
			a.internalError(c, "list.html", err, gin.H{"title": "Blog"})
			return
		}
		tag = found
		filter.TagID = found.ID
	}

	posts, err := a.posts.ListPublished(ctx, filter)
	if err != nil {
		a.internalError(c, "list.html", err, gin.H{"title": "Blog", "tag": tag})
		return
	}

	tagUsage, err := a.tags.PublishedUsage(ctx)
	if err != nil {
		c.Error(err)
		tagUsage = nil
	}

	var page interface{}
	if hasPage {
		page = rawPage
	}

	a.renderHTML(c, http.StatusOK, "list.html", gin.H{
		"title":      "Blog",
		"posts":      posts.Posts,
		"page":       page,
		"pagination": posts,
		"tag":        tag,
		"tagUsage":   tagUsage,
		"year":       time.Now().Year(),
	})
}

// ShowPostDetail renders a published post addressed by date and slug, and
// accepts new comments on POST.
func (a *API) ShowPostDetail(c *gin.Context) {
	ctx := c.Request.Context()

	year, yearErr := parseIntParam(c, "year")
	month, monthErr := parseIntParam(c, "month")
	day, dayErr := parseIntParam(c, "day")
	if yearErr != nil || monthErr != nil || dayErr != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	post, err := a.posts.GetPublishedByDate(ctx, year, month, day, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		a.internalError(c, "detail.html", err, gin.H{"title": "Post"})
		return
	}

	session := sessions.Default(c)

	var (
		form       commentForm
		formErrors = fieldErrors{}
		newComment *db.Comment
	)

	if c.Request.Method == http.MethodPost {
		formErrors = bindForm(c, &form)
		if len(formErrors) == 0 {
			newComment, err = a.comments.Create(ctx, post, service.CommentInput{
				Name:  form.Name,
				Email: form.Email,
				Body:  form.Body,
			})
			if err != nil {
				a.internalError(c, "detail.html", err, gin.H{"title": post.Title, "post": post})
				return
			}

			session.Set(sessionCommenterName, form.Name)
			session.Set(sessionCommenterEmail, form.Email)
			if saveErr := session.Save(); saveErr != nil {
				c.Error(saveErr)
			}

			logging.Info().
				Uint("post_id", post.ID).
				Uint("comment_id", newComment.ID).
				Msg("comment created")
		}
	} else {
		if name, ok := session.Get(sessionCommenterName).(string); ok {
			form.Name = name
		}
		if email, ok := session.Get(sessionCommenterEmail).(string); ok {
			form.Email = email
		}
	}

	comments, err := a.comments.ListActive(ctx, post.ID)
	if err != nil {
		a.internalError(c, "detail.html", err, gin.H{"title": post.Title, "post": post})
		return
	}

	similar, err := a.posts.Similar(ctx, post, service.SimilarPostsLimit)
	if err != nil {
		a.internalError(c, "detail.html", err, gin.H{"title": post.Title, "post": post})
		return
	}

	content, err := renderMarkdown(post.Body)
	if err != nil {
		a.internalError(c, "detail.html", err, gin.H{"title": post.Title, "post": post})
		return
	}

	a.renderHTML(c, http.StatusOK, "detail.html", gin.H{
		"title":        post.Title,
		"post":         post,
		"content":      content,
		"comments":     comments,
		"form":         form,
		"errors":       formErrors,
		"newComment":   newComment,
		"similarPosts": similar,
		"year":         time.Now().Year(),
	})
}

// SharePost renders the recommend-by-email form and sends the mail on POST.
func (a *API) SharePost(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	post, err := a.posts.GetPublished(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		a.internalError(c, "share.html", err, gin.H{"title": "Share"})
		return
	}

	var (
		form       emailPostForm
		formErrors = fieldErrors{}
		sent       bool
	)

	if c.Request.Method == http.MethodPost {
		formErrors = bindForm(c, &form)
		if len(formErrors) == 0 {
			postURL, err := a.absoluteURL(c, post.AbsolutePath())
			if err != nil {
				logging.Warn().Err(err).Uint("post_id", post.ID).Msg("share rejected")
				c.Error(err)
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			if err := a.shares.Share(ctx, post, postURL, service.ShareInput{
				Name:     form.Name,
				Email:    form.Email,
				To:       form.To,
				Comments: form.Comments,
			}); err != nil {
				logging.Error().Err(err).Uint("post_id", post.ID).Msg("share mail failed")
				c.Error(err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			sent = true
			logging.Info().Uint("post_id", post.ID).Msg("post shared by email")
		}
	} else {
		session := sessions.Default(c)
		if name, ok := session.Get(sessionCommenterName).(string); ok {
			form.Name = name
		}
		if email, ok := session.Get(sessionCommenterEmail).(string); ok {
			form.Email = email
		}
	}

	a.renderHTML(c, http.StatusOK, "share.html", gin.H{
		"title":  "Share " + post.Title,
		"post":   post,
		"form":   form,
		"errors": formErrors,
		"sent":   sent,
		"year":   time.Now().Year(),
	})
}
