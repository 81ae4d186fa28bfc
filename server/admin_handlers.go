package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/schoolfeed/schoolfeed/model"
	"github.com/schoolfeed/schoolfeed/server/middlewares"
)

type createPageRequest struct {
	Location string `json:"location" binding:"required,min=1,max=20"`
	Name     string `json:"school_name" binding:"required,min=1,max=20"`
}

type publishNewsRequest struct {
	PageID uint   `json:"page_id" binding:"required"`
	Title  string `json:"title" binding:"required,min=1,max=100"`
	Body   string `json:"content" binding:"required,min=10,max=500"`
}

type updateNewsRequest struct {
	NewsID uint   `json:"news_id" binding:"required"`
	Title  string `json:"title" binding:"required,min=1,max=100"`
	Body   string `json:"content" binding:"required,min=10,max=500"`
}

// CreatePage registers a school page owned by the calling admin.
func (s *Server) CreatePage(c *gin.Context) {
	var req createPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errValidation(err.Error()))
		return
	}

	page := model.Page{
		OwnerID:  c.GetUint(middlewares.ContextUserIDKey),
		Location: req.Location,
		Name:     req.Name,
	}
	if err := s.DB.Create(&page).Error; err != nil {
		renderError(c, errors.Wrap(err, "fail to create page"))
		return
	}
	c.JSON(http.StatusCreated, response{Message: "school page created", Data: page})
}

// PublishNews creates a news item under a page the caller owns and
// hands it off to the fan-out engine. The response does not wait for
// fan-out; a fan-out failure never turns a committed publication into
// an error.
func (s *Server) PublishNews(c *gin.Context) {
	var req publishNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errValidation(err.Error()))
		return
	}

	item, err := s.publish(c.GetUint(middlewares.ContextUserIDKey), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response{Message: "school news published", Data: item})
}

func (s *Server) publish(authorID uint, req publishNewsRequest) (*model.NewsItem, error) {
	var page model.Page
	err := s.DB.First(&page, req.PageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound("school page does not exist")
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to look up page")
	}
	if page.OwnerID != authorID {
		return nil, errForbidden("permission denied")
	}

	item := model.NewsItem{
		PageID:   page.Id,
		AuthorID: authorID,
		Title:    req.Title,
		Body:     req.Body,
	}
	if err := s.DB.Create(&item).Error; err != nil {
		return nil, errors.Wrap(err, "fail to create news item")
	}

	// Detached from the response path on purpose: publication latency
	// must not depend on the subscriber count.
	s.Fanout.Enqueue(page.Id, item.Id)
	return &item, nil
}

// UpdateNews edits a news item the caller authored. No re-fan-out: feed
// rows reference the item id, so the edit is visible retroactively.
func (s *Server) UpdateNews(c *gin.Context) {
	var req updateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errValidation(err.Error()))
		return
	}

	item, err := s.editNews(c.GetUint(middlewares.ContextUserIDKey), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "school news updated", Data: item})
}

func (s *Server) editNews(editorID uint, req updateNewsRequest) (*model.NewsItem, error) {
	item, err := s.findLiveNews(req.NewsID, editorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item.Title = req.Title
	item.Body = req.Body
	item.EditedAt = &now
	if err := s.DB.Save(item).Error; err != nil {
		return nil, errors.Wrap(err, "fail to update news item")
	}
	return item, nil
}

// DeleteNews soft-deletes a news item the caller authored. The row
// stays in storage as an audit trail; list queries filter it out.
func (s *Server) DeleteNews(c *gin.Context) {
	newsID, err := strconv.ParseUint(c.Param("newsID"), 10, 32)
	if err != nil {
		renderError(c, errValidation("invalid news id"))
		return
	}

	if err := s.softDeleteNews(c.GetUint(middlewares.ContextUserIDKey), uint(newsID)); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "school news deleted"})
}

func (s *Server) softDeleteNews(editorID uint, newsID uint) error {
	item, err := s.findLiveNews(newsID, editorID)
	if err != nil {
		return err
	}

	now := time.Now()
	item.Deleted = true
	item.DeletedAt = &now
	if err := s.DB.Save(item).Error; err != nil {
		return errors.Wrap(err, "fail to soft-delete news item")
	}
	return nil
}

// findLiveNews loads a non-deleted news item and checks authorship.
// Already soft-deleted items read as absent (404), not forbidden.
func (s *Server) findLiveNews(newsID uint, editorID uint) (*model.NewsItem, error) {
	var item model.NewsItem
	err := s.DB.Where("id = ? AND deleted = ?", newsID, false).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound("school news does not exist")
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to look up news item")
	}
	if item.AuthorID != editorID {
		return nil, errForbidden("permission denied")
	}
	return &item, nil
}
