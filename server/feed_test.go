package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewsfeedScenario walks the whole lifecycle: page creation,
// subscription, publication with fan-out, unsubscription, and a second
// publication that must not reach the former subscriber.
func TestNewsfeedScenario(t *testing.T) {
	s, router := newTestServer(t)
	adminTok := registerAndSignIn(t, router, "admin01", "admin")
	studentTok := registerAndSignIn(t, router, "student01", "student")

	pageID := createPage(t, router, adminTok, "Seocho-dong", "SeochoMiddle")
	require.Equal(t, uint(1), pageID)

	w := doJSON(router, http.MethodPost, "/api/v1/student/subscriptions", studentTok, gin.H{"page_id": pageID})
	require.Equal(t, http.StatusCreated, w.Code)

	firstNews := publishNews(t, router, adminTok, pageID, "sports day")
	s.Fanout.Wait()

	w = doJSON(router, http.MethodGet, "/api/v1/student/newsfeed", studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decodeFeed(t, w)
	assert.True(t, feed.containsNews(firstNews))
	assert.Equal(t, "SeochoMiddle", feed.Data[0].SchoolName)
	assert.Equal(t, "tester", feed.Data[0].AdminName)

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/student/subscriptions/%d", pageID), studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	secondNews := publishNews(t, router, adminTok, pageID, "school fair")
	s.Fanout.Wait()

	// The historical entry survives the unsubscribe; the new item was
	// published to an empty subscriber set as far as this student is
	// concerned.
	w = doJSON(router, http.MethodGet, "/api/v1/student/newsfeed", studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed = decodeFeed(t, w)
	assert.True(t, feed.containsNews(firstNews))
	assert.False(t, feed.containsNews(secondNews))

	// And the per-page view is gated on current subscription state.
	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/student/school-news/%d", pageID), studentTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPageFeedNewestFirst(t *testing.T) {
	s, router := newTestServer(t)
	adminTok := registerAndSignIn(t, router, "admin01", "admin")
	studentTok := registerAndSignIn(t, router, "student01", "student")
	pageID := createPage(t, router, adminTok, "Seocho-dong", "SeochoMiddle")

	w := doJSON(router, http.MethodPost, "/api/v1/student/subscriptions", studentTok, gin.H{"page_id": pageID})
	require.Equal(t, http.StatusCreated, w.Code)

	older := publishNews(t, router, adminTok, pageID, "older news")
	newer := publishNews(t, router, adminTok, pageID, "newer news")
	s.Fanout.Wait()

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/student/school-news/%d", pageID), studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decodeFeed(t, w)
	require.Len(t, feed.Data, 2)
	assert.Equal(t, newer, feed.Data[0].NewsID)
	assert.Equal(t, older, feed.Data[1].NewsID)
}

func TestSoftDeletedNewsHiddenFromFeeds(t *testing.T) {
	s, router := newTestServer(t)
	adminTok := registerAndSignIn(t, router, "admin01", "admin")
	studentTok := registerAndSignIn(t, router, "student01", "student")
	pageID := createPage(t, router, adminTok, "Seocho-dong", "SeochoMiddle")

	w := doJSON(router, http.MethodPost, "/api/v1/student/subscriptions", studentTok, gin.H{"page_id": pageID})
	require.Equal(t, http.StatusCreated, w.Code)

	keptNews := publishNews(t, router, adminTok, pageID, "kept news")
	doomedNews := publishNews(t, router, adminTok, pageID, "doomed news")
	s.Fanout.Wait()

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/school-news/%d", doomedNews), adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/student/newsfeed", studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decodeFeed(t, w)
	assert.True(t, feed.containsNews(keptNews))
	assert.False(t, feed.containsNews(doomedNews))

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/student/school-news/%d", pageID), studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed = decodeFeed(t, w)
	assert.True(t, feed.containsNews(keptNews))
	assert.False(t, feed.containsNews(doomedNews))
}

// Edits after publication are visible in the aggregate feed: feed rows
// point at the item id, readers fetch current state.
func TestEditVisibleRetroactivelyInFeed(t *testing.T) {
	s, router := newTestServer(t)
	adminTok := registerAndSignIn(t, router, "admin01", "admin")
	studentTok := registerAndSignIn(t, router, "student01", "student")
	pageID := createPage(t, router, adminTok, "Seocho-dong", "SeochoMiddle")

	w := doJSON(router, http.MethodPost, "/api/v1/student/subscriptions", studentTok, gin.H{"page_id": pageID})
	require.Equal(t, http.StatusCreated, w.Code)

	newsID := publishNews(t, router, adminTok, pageID, "first draft")
	s.Fanout.Wait()

	w = doJSON(router, http.MethodPut, "/api/v1/admin/school-news", adminTok, gin.H{
		"news_id": newsID,
		"title":   "final version",
		"content": "the corrected announcement text",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/student/newsfeed", studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decodeFeed(t, w)
	require.Len(t, feed.Data, 1)
	assert.Equal(t, "final version", feed.Data[0].Title)
	assert.NotEmpty(t, feed.Data[0].EditedAt)
}

// Fan-out reaches every subscriber present at publish time, and only
// those.
func TestFanOutReachesAllCurrentSubscribers(t *testing.T) {
	s, router := newTestServer(t)
	adminTok := registerAndSignIn(t, router, "admin01", "admin")
	pageID := createPage(t, router, adminTok, "Seocho-dong", "SeochoMiddle")

	var subscriberToks []string
	for i := 0; i < 3; i++ {
		tok := registerAndSignIn(t, router, fmt.Sprintf("student0%d", i+1), "student")
		w := doJSON(router, http.MethodPost, "/api/v1/student/subscriptions", tok, gin.H{"page_id": pageID})
		require.Equal(t, http.StatusCreated, w.Code)
		subscriberToks = append(subscriberToks, tok)
	}
	lateTok := registerAndSignIn(t, router, "latecomer1", "student")

	newsID := publishNews(t, router, adminTok, pageID, "for subscribers only")
	s.Fanout.Wait()

	for _, tok := range subscriberToks {
		w := doJSON(router, http.MethodGet, "/api/v1/student/newsfeed", tok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeFeed(t, w).containsNews(newsID))
	}

	// Subscribing after publication does not backfill the feed.
	w := doJSON(router, http.MethodPost, "/api/v1/student/subscriptions", lateTok, gin.H{"page_id": pageID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(router, http.MethodGet, "/api/v1/student/newsfeed", lateTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
