package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Referent/internal/usecase"
)

type extractRequest struct {
	URL string `json:"url"`
}

type dispatchRequest struct {
	ActionKind string `json:"actionKind"`
	Body       string `json:"body"`
	SourceURL  string `json:"sourceUrl"`
}

type runRequest struct {
	URL        string `json:"url"`
	ActionKind string `json:"actionKind"`
}

type translateRequest struct {
	Body string `json:"body"`
}

type publishRequest struct {
	Text string `json:"text"`
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ExtractHandler returns the title, date and body of the article at url.
func ExtractHandler(svc Referent) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req extractRequest
		if !bind(c, &req) {
			return
		}
		article, err := svc.Extract(c.Request.Context(), req.URL)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, article)
	}
}

// DispatchHandler applies an action to caller-supplied article text.
func DispatchHandler(svc Referent) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dispatchRequest
		if !bind(c, &req) {
			return
		}
		result, err := svc.Dispatch(c.Request.Context(), usecase.DispatchRequest{
			Action:    req.ActionKind,
			Body:      req.Body,
			SourceURL: req.SourceURL,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": result})
	}
}

// RunHandler extracts the article and applies the action in one call.
func RunHandler(svc Referent) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req runRequest
		if !bind(c, &req) {
			return
		}
		res, err := svc.Run(c.Request.Context(), req.URL, req.ActionKind)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func TranslateHandler(svc Referent) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req translateRequest
		if !bind(c, &req) {
			return
		}
		translation, err := svc.Translate(c.Request.Context(), req.Body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"translation": translation})
	}
}

func PublishHandler(svc Referent) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req publishRequest
		if !bind(c, &req) {
			return
		}
		if err := svc.Publish(c.Request.Context(), req.Text); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"published": true})
	}
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": usecase.MsgMalformedRequest})
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	f := usecase.Classify(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(f.Status, gin.H{"error": f.Message})
}
