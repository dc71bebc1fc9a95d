package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/external/gmail"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Mailbox is the Gmail preview client. Nil when the mailbox token is not
// configured; the preview endpoints answer 503 in that case.
var Mailbox *gmail.Client

// Summarizer produces the one-sentence email summary. A package variable so
// tests can swap in a counting fake.
var Summarizer EmailSummarizer = geminiSummarizer{}

type EmailSummarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type geminiSummarizer struct{}

func (geminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if config.GeminiClient == nil {
		return "", fmt.Errorf("gemini client is not configured")
	}

	prompt := []genai.Part{
		genai.Text("Summarize the following email in exactly one short sentence. " +
			"Answer with the sentence only, no preamble:\n\n" + text),
	}
	resp, err := config.GeminiClient.GenerateContent(ctx, prompt...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no result")
	}
	sentence, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected gemini response type")
	}
	return strings.TrimSpace(string(sentence)), nil
}

const summaryCacheTTL = 24 * time.Hour

func summaryCacheKey(emailID uint) string {
	return fmt.Sprintf("email:%d:summary", emailID)
}

type EmailInput struct {
	From       string     `json:"from" binding:"required"`
	Subject    string     `json:"subject" binding:"required"`
	Body       string     `json:"body"`
	Snippet    string     `json:"snippet"`
	ReceivedAt *time.Time `json:"receivedAt"`
}

// --- Stored email CRUD ---

// ListEmailsHandler returns a paginated inbox, newest first.
func ListEmailsHandler(c *gin.Context) {
	query := config.DB.Model(&models.IncomingEmail{})
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	// Fork the filtered query so Count and Find do not share a statement.
	query = query.Session(&gorm.Session{})

	var totalRows int64
	query.Count(&totalRows)

	var emails []models.IncomingEmail
	if err := query.Order("received_at desc, id desc").Scopes(Paginate(c)).Find(&emails).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch emails"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, emails, totalRows))
}

// GetEmailHandler returns one stored email and marks it read.
func GetEmailHandler(c *gin.Context) {
	var email models.IncomingEmail
	if err := config.DB.First(&email, c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch email"})
		}
		return
	}

	if !email.IsRead {
		email.IsRead = true
		if err := config.DB.Model(&email).Update("is_read", true).Error; err != nil {
			slog.Warn("Failed to mark email read", "error", err, "email_id", email.ID)
		}
	}
	c.JSON(http.StatusOK, email)
}

// CreateEmailHandler stores a manually entered incoming-email record.
func CreateEmailHandler(c *gin.Context) {
	var input EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	receivedAt := input.ReceivedAt
	if receivedAt == nil {
		now := time.Now()
		receivedAt = &now
	}
	email := models.IncomingEmail{
		FromAddress: input.From,
		Subject:     input.Subject,
		Body:        input.Body,
		Snippet:     input.Snippet,
		ReceivedAt:  receivedAt,
	}
	if err := config.DB.Create(&email).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create email"})
		return
	}
	c.JSON(http.StatusCreated, email)
}

// DeleteEmailHandler removes a stored email and its cached summary.
// Hard delete: a soft-deleted row would keep occupying the gmail_id unique
// index and block re-importing the same message.
func DeleteEmailHandler(c *gin.Context) {
	var email models.IncomingEmail
	if err := config.DB.First(&email, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		return
	}
	if err := config.DB.Unscoped().Delete(&email).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete email"})
		return
	}
	if config.RDB != nil {
		config.RDB.Del(config.Ctx, summaryCacheKey(email.ID))
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- AI summary ---

// SummarizeEmailHandler returns the one-sentence summary for a stored email.
// Lookup order: persisted column, Redis, then the summarization service. A
// cached summary short-circuits the service call entirely.
func SummarizeEmailHandler(c *gin.Context) {
	var email models.IncomingEmail
	if err := config.DB.First(&email, c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch email"})
		}
		return
	}

	if email.AISummary != "" {
		c.JSON(http.StatusOK, gin.H{"summary": email.AISummary, "cached": true})
		return
	}

	cacheKey := summaryCacheKey(email.ID)
	if config.RDB != nil {
		cached, err := config.RDB.Get(config.Ctx, cacheKey).Result()
		if err == nil && cached != "" {
			// Backfill the column so the cache surviving matters less.
			config.DB.Model(&email).Update("ai_summary", cached)
			c.JSON(http.StatusOK, gin.H{"summary": cached, "cached": true})
			return
		}
		if err != nil && err != redis.Nil {
			slog.Error("Redis GET failed for summary", "error", err, "email_id", email.ID)
		}
	}

	text := email.Body
	if text == "" {
		text = email.Snippet
	}
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email has no body to summarize"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	summary, err := Summarizer.Summarize(ctx, fmt.Sprintf("From: %s\nSubject: %s\n\n%s",
		email.FromAddress, email.Subject, text))
	if err != nil {
		slog.Error("Summarization failed", "error", err, "email_id", email.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to summarize email"})
		return
	}

	if err := config.DB.Model(&email).Update("ai_summary", summary).Error; err != nil {
		slog.Warn("Failed to persist summary", "error", err, "email_id", email.ID)
	}
	if config.RDB != nil {
		if err := config.RDB.Set(config.Ctx, cacheKey, summary, summaryCacheTTL).Err(); err != nil {
			slog.Warn("Failed to cache summary", "error", err, "email_id", email.ID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "cached": false})
}

// --- Gmail preview / import ---

// MailboxPreviewHandler lists live mailbox messages without storing them.
func MailboxPreviewHandler(c *gin.Context) {
	if Mailbox == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Mailbox is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	messages, err := Mailbox.ListMessages(ctx, c.DefaultQuery("q", "in:inbox"), 20)
	if err != nil {
		slog.Error("Mailbox list failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch mailbox"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// ImportMailboxHandler pulls mailbox messages into incoming_emails,
// deduplicated on the Gmail message ID.
func ImportMailboxHandler(c *gin.Context) {
	if Mailbox == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Mailbox is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	messages, err := Mailbox.ListMessages(ctx, c.DefaultQuery("q", "in:inbox"), 20)
	if err != nil {
		slog.Error("Mailbox list failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch mailbox"})
		return
	}

	imported := 0
	for _, msg := range messages {
		var existing int64
		config.DB.Model(&models.IncomingEmail{}).Where("gmail_id = ?", msg.ID).Count(&existing)
		if existing > 0 {
			continue
		}

		gid := msg.ID
		now := time.Now()
		email := models.IncomingEmail{
			GmailID:     &gid,
			FromAddress: msg.From,
			Subject:     msg.Subject,
			Snippet:     msg.Snippet,
			Body:        msg.Body,
			ReceivedAt:  &now,
		}
		if err := config.DB.Create(&email).Error; err != nil {
			slog.Warn("Failed to store imported email", "error", err, "gmail_id", msg.ID)
			continue
		}
		imported++

		GlobalHub.Broadcast(EventEmailReceived, gin.H{
			"id":      email.ID,
			"from":    email.FromAddress,
			"subject": email.Subject,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "imported": imported})
}
