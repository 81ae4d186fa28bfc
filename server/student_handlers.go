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

type subscribeRequest struct {
	PageID uint `json:"page_id" binding:"required"`
}

// subscriptionRow is one entry of the student's subscription list,
// joined with page display data.
type subscriptionRow struct {
	PageID     uint      `json:"page_id"`
	SchoolName string    `json:"school_name"`
	Location   string    `json:"location"`
	CreatedAt  time.Time `json:"created_at"`
}

// newsRow is one feed entry joined with page and author display data.
// Readers always see the item's current state; edits made after fan-out
// show up here retroactively.
type newsRow struct {
	NewsID     uint       `json:"news_id"`
	Title      string     `json:"title"`
	Body       string     `json:"content"`
	PageID     uint       `json:"page_id"`
	Location   string     `json:"location"`
	SchoolName string     `json:"school_name"`
	AdminName  string     `json:"admin_name"`
	CreatedAt  time.Time  `json:"created_at"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
}

const newsRowSelect = `news_items.id AS news_id, news_items.title, news_items.body,
	news_items.page_id, pages.location, pages.name AS school_name,
	accounts.display_name AS admin_name, news_items.created_at, news_items.edited_at`

// Subscribe adds the calling student to a page's subscriber set.
// 404 when the page is absent, 409 on an existing subscription.
func (s *Server) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errValidation(err.Error()))
		return
	}

	sub, err := s.subscribe(c.GetUint(middlewares.ContextUserIDKey), req.PageID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response{Message: "subscribed", Data: sub})
}

func (s *Server) subscribe(studentID uint, pageID uint) (*model.Subscription, error) {
	var page model.Page
	err := s.DB.First(&page, pageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound("school page does not exist")
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to look up page")
	}

	var existing model.Subscription
	err = s.DB.Where("student_id = ? AND page_id = ?", studentID, pageID).First(&existing).Error
	if err == nil {
		return nil, errConflict("already subscribed")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "fail to look up subscription")
	}

	sub := model.Subscription{StudentID: studentID, PageID: pageID}
	if err := s.DB.Create(&sub).Error; err != nil {
		return nil, errors.Wrap(err, "fail to create subscription")
	}
	return &sub, nil
}

// Unsubscribe removes a current subscription. Feed memberships written
// while it existed are untouched; the aggregate feed keeps its history.
func (s *Server) Unsubscribe(c *gin.Context) {
	pageID, err := strconv.ParseUint(c.Param("pageID"), 10, 32)
	if err != nil {
		renderError(c, errValidation("invalid page id"))
		return
	}

	if err := s.unsubscribe(c.GetUint(middlewares.ContextUserIDKey), uint(pageID)); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "unsubscribed"})
}

func (s *Server) unsubscribe(studentID uint, pageID uint) error {
	var existing model.Subscription
	err := s.DB.Where("student_id = ? AND page_id = ?", studentID, pageID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errNotFound("not subscribed")
	}
	if err != nil {
		return errors.Wrap(err, "fail to look up subscription")
	}

	if err := s.DB.Where("student_id = ? AND page_id = ?", studentID, pageID).
		Delete(&model.Subscription{}).Error; err != nil {
		return errors.Wrap(err, "fail to delete subscription")
	}
	return nil
}

// ListSubscriptions returns the student's current subscriptions, newest
// first. An empty list surfaces as 404 rather than an empty success.
func (s *Server) ListSubscriptions(c *gin.Context) {
	rows, err := s.listSubscriptions(c.GetUint(middlewares.ContextUserIDKey))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "subscriptions found", Data: rows})
}

func (s *Server) listSubscriptions(studentID uint) ([]subscriptionRow, error) {
	var rows []subscriptionRow
	err := s.DB.Model(&model.Subscription{}).
		Select("subscriptions.page_id, pages.name AS school_name, pages.location, subscriptions.created_at").
		Joins("JOIN pages ON pages.id = subscriptions.page_id").
		Where("subscriptions.student_id = ?", studentID).
		Order("subscriptions.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to list subscriptions")
	}
	if len(rows) == 0 {
		return nil, errNotFound("no subscriptions")
	}
	return rows, nil
}

// PageFeed returns the page's live news for a currently subscribed
// student, newest first. Gated on present subscription state, not on
// feed membership history.
func (s *Server) PageFeed(c *gin.Context) {
	pageID, err := strconv.ParseUint(c.Param("pageID"), 10, 32)
	if err != nil {
		renderError(c, errValidation("invalid page id"))
		return
	}

	rows, err := s.pageFeed(c.GetUint(middlewares.ContextUserIDKey), uint(pageID))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "school news found", Data: rows})
}

func (s *Server) pageFeed(studentID uint, pageID uint) ([]newsRow, error) {
	var existing model.Subscription
	err := s.DB.Where("student_id = ? AND page_id = ?", studentID, pageID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errForbidden("not subscribed to this page")
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to look up subscription")
	}

	var rows []newsRow
	err = s.DB.Model(&model.NewsItem{}).
		Select(newsRowSelect).
		Joins("JOIN pages ON pages.id = news_items.page_id").
		Joins("JOIN accounts ON accounts.id = news_items.author_id").
		Where("news_items.page_id = ? AND news_items.deleted = ?", pageID, false).
		Order("news_items.created_at DESC, news_items.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to query page news")
	}
	if len(rows) == 0 {
		return nil, errNotFound("no news for this page")
	}
	return rows, nil
}

// AggregateFeed reconstructs the student's newsfeed from the historical
// feed membership rows, across all pages and independent of current
// subscription state. Soft-deleted items are filtered out.
func (s *Server) AggregateFeed(c *gin.Context) {
	rows, err := s.aggregateFeed(c.GetUint(middlewares.ContextUserIDKey))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "newsfeed found", Data: rows})
}

func (s *Server) aggregateFeed(studentID uint) ([]newsRow, error) {
	var rows []newsRow
	err := s.DB.Model(&model.NewsItem{}).
		Select(newsRowSelect).
		Joins("JOIN feed_memberships ON feed_memberships.news_id = news_items.id").
		Joins("JOIN pages ON pages.id = news_items.page_id").
		Joins("JOIN accounts ON accounts.id = news_items.author_id").
		Where("feed_memberships.student_id = ? AND news_items.deleted = ?", studentID, false).
		Order("news_items.created_at DESC, news_items.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to query newsfeed")
	}
	if len(rows) == 0 {
		return nil, errNotFound("newsfeed is empty")
	}
	return rows, nil
}
