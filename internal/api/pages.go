package api

import (
	"net/http"

	"github.com/arencloud/pagevault/internal/media"
	"github.com/arencloud/pagevault/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Page handlers always answer 200 with the {status,data} envelope: failures
// are converted to user-facing messages at this boundary and never surface as
// transport faults.

func registerPages(r *gin.RouterGroup, svc *media.Service) {
	h := &pagesHandler{svc: svc}
	r.POST("/pages", h.create)
	r.GET("/pages", h.find)
	r.GET("/pages/:id", h.get)
	r.PUT("/pages/:id", h.update)
}

type pagesHandler struct {
	svc *media.Service
}

func (h *pagesHandler) create(c *gin.Context) {
	var in media.CreatePageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, media.Result{Status: "error", Data: media.MsgInvalidInput})
		return
	}
	ref, err := h.svc.CreatePage(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		c.JSON(http.StatusOK, media.Failure(err))
		return
	}
	c.JSON(http.StatusOK, media.Success(ref))
}

func (h *pagesHandler) find(c *gin.Context) {
	userID := middleware.UserID(c)
	if c.Query("bucketList") == "true" {
		buckets, err := h.svc.ListBuckets(c.Request.Context(), userID, c.Query("account"))
		if err != nil {
			c.JSON(http.StatusOK, media.Failure(err))
			return
		}
		c.JSON(http.StatusOK, media.Success(buckets))
		return
	}
	recs, err := h.svc.FindPages(c.Request.Context(), userID, c.Query("name"))
	if err != nil {
		c.JSON(http.StatusOK, media.Failure(err))
		return
	}
	c.JSON(http.StatusOK, media.Success(recs))
}

func (h *pagesHandler) get(c *gin.Context) {
	content, err := h.svc.GetPage(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, media.Failure(err))
		return
	}
	c.JSON(http.StatusOK, media.Success(content))
}

func (h *pagesHandler) update(c *gin.Context) {
	var in media.UpdatePageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, media.Result{Status: "error", Data: media.MsgInvalidInput})
		return
	}
	// the path id wins over any _id carried in the body
	in.ID = c.Param("id")
	res, err := h.svc.UpdatePage(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		c.JSON(http.StatusOK, media.Failure(err))
		return
	}
	c.JSON(http.StatusOK, media.Success(res))
}
