package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ogrodnik/feedsync/app/cfg"
	"github.com/ogrodnik/feedsync/app/database"
)

func NewHandler(feedRepo database.FeedRepository, articleRepo database.ArticleRepository,
	syncer SyncerInterface, sched SchedulerInterface) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
		syncer:      syncer,
		scheduler:   sched,
	}
}

type feedRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) AddFeed(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed URL"})
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed URL"})
		return
	}

	if err := h.syncer.AddFeed(c.Request.Context(), req.URL); err != nil {
		slog.Error("Failed to add feed", "url", req.URL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch feed", "url": req.URL})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": req.URL})
}

func (h *Handler) RemoveFeed(c *gin.Context) {
	feedURL := c.Query("url")
	if feedURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	if err := h.syncer.RemoveFeed(c.Request.Context(), feedURL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": feedURL})
}

type purgeRequest struct {
	Days int `json:"days" binding:"required"`
}

func (h *Handler) PurgeArticles(c *gin.Context) {
	var req purgeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid days"})
		return
	}

	deleted, err := h.syncer.PurgeArticles(c.Request.Context(), req.Days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purge articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": req.Days, "deleted": deleted})
}

// UpdateNow triggers one full pass outside the schedule. It runs synchronously
// so the caller observes a completed pass when the response arrives.
func (h *Handler) UpdateNow(c *gin.Context) {
	h.syncer.SyncAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

type startSchedulerRequest struct {
	IntervalMs int `json:"interval_ms"`
}

func (h *Handler) StartScheduler(c *gin.Context) {
	var req startSchedulerRequest
	// Body is optional; the configured default interval applies when absent.
	_ = c.ShouldBindJSON(&req)

	interval := time.Duration(req.IntervalMs) * time.Millisecond
	if req.IntervalMs <= 0 {
		interval = time.Duration(cfg.Get().SchedulerInterval) * time.Second
	}

	h.scheduler.Start(interval)
	c.JSON(http.StatusOK, gin.H{"running": h.scheduler.Running(), "interval": interval.String()})
}

func (h *Handler) StopScheduler(c *gin.Context) {
	h.scheduler.Stop()
	c.JSON(http.StatusOK, gin.H{"running": h.scheduler.Running()})
}

func (h *Handler) Search(c *gin.Context) {
	keywords := c.QueryArray("q")
	if len(keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing q parameter"})
		return
	}

	var opts database.SearchOptions

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from timestamp"})
			return
		}
		opts.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to timestamp"})
			return
		}
		opts.To = &t
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		opts.Limit = n
	}

	results, err := h.articleRepo.Search(c.Request.Context(), keywords, opts)
	if err != nil {
		slog.Error("Database error", "operation", "search", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": searchResponse(results),
		"total":   len(results),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(c.Request.Context()); err == nil {
		health["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{
		"scheduler_running": h.scheduler.Running(),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(c.Request.Context()); err == nil {
		stats["feeds"] = feedCount
	}
	if articleCount, err := h.articleRepo.GetArticleCount(c.Request.Context()); err == nil {
		stats["articles"] = articleCount
	}

	c.JSON(http.StatusOK, stats)
}

type searchResultResponse struct {
	FeedURL     string               `json:"feed_url"`
	FeedTitle   string               `json:"feed_title"`
	GUID        string               `json:"guid"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Link        string               `json:"link"`
	OrigLink    string               `json:"orig_link,omitempty"`
	PublishedAt *time.Time           `json:"published_at,omitempty"`
	Author      string               `json:"author,omitempty"`
	Categories  []string             `json:"categories,omitempty"`
	Enclosures  []database.Enclosure `json:"enclosures,omitempty"`
	StoredAt    time.Time            `json:"stored_at"`
}

func searchResponse(results []database.SearchResult) []searchResultResponse {
	response := make([]searchResultResponse, 0, len(results))
	for _, r := range results {
		response = append(response, searchResultResponse{
			FeedURL:     r.FeedURL,
			FeedTitle:   r.FeedTitle,
			GUID:        r.GUID,
			Title:       r.Title,
			Description: r.Description,
			Link:        r.Link,
			OrigLink:    r.OrigLink,
			PublishedAt: r.PublishedAt,
			Author:      r.Author,
			Categories:  r.Categories,
			Enclosures:  r.Enclosures,
			StoredAt:    r.CreatedAt,
		})
	}
	return response
}
