package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"b24bridge/mapping"
)

// CallWebhookHandler handles call events from the AI calling platform.
// The inbound request is acknowledged immediately; the CRM sync runs in a
// detached goroutine so the platform's delivery timeout is never exceeded.
func CallWebhookHandler(service *BitrixService) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, WebhookResponse{
				Success: false,
				Message: "Failed to read request body",
			})
			return
		}

		if service.Config().HasWebhookSecret() {
			signature := c.GetHeader(SignatureHeader)
			if !VerifySignature(service.Config().WebhookSecret, body, signature) {
				slog.Warn("webhook signature mismatch",
					slog.String("webhook_id", c.GetHeader("X-Webhook-Id")))
				c.JSON(http.StatusUnauthorized, WebhookResponse{
					Success: false,
					Message: "Invalid webhook signature",
				})
				return
			}
		}

		var payload mapping.Payload
		if err := json.Unmarshal(body, &payload); err != nil {
			c.JSON(http.StatusBadRequest, WebhookResponse{
				Success: false,
				Message: "Invalid JSON payload",
			})
			return
		}

		eventType := payload.String("type")
		if eventType == "" {
			c.JSON(http.StatusBadRequest, WebhookResponse{
				Success: false,
				Message: "Missing required field: type",
			})
			return
		}

		eventID := payload.String("id")
		slog.Info("webhook accepted",
			slog.String("event_id", eventID),
			slog.String("event_type", eventType),
			slog.String("call_list_id", c.GetHeader("X-Call-List-Id")))

		// Fire-and-forget: the request context dies with the response, so the
		// sync runs on a fresh background context with no cancellation.
		go func() {
			if _, err := service.Sync(context.Background(), payload); err != nil {
				slog.Error("sync failed",
					slog.String("event_id", eventID),
					slog.String("event_type", eventType),
					slog.String("error", err.Error()))
			}
		}()

		c.JSON(http.StatusOK, WebhookResponse{
			Success: true,
			Message: "Webhook accepted",
			Data: gin.H{
				"id":   eventID,
				"type": eventType,
			},
		})
	}
}

// HealthCheckHandler reports service liveness
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "b24bridge",
		"version": "1.0.0",
	})
}

// TestSyncHandler runs a canned committed-call payload through the full sync
// synchronously and returns the result, for checking the Bitrix wiring.
func TestSyncHandler(service *BitrixService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := mapping.Payload{
			"id":   "test-event",
			"type": "call.finished",
			"call": map[string]any{
				"duration":  float64(125000),
				"startedAt": "2026-01-18T10:30:00Z",
				"endedAt":   "2026-01-18T10:32:05Z",
				"status":    "completed",
				"type":      "outgoing",
				"agreements": map[string]any{
					"client_name": "Тест Тестов",
					"isCommit":    true,
					"agreements":  "Перезвонить завтра в 12:00",
				},
			},
			"contact": map[string]any{
				"phone": "+7 999 000 11 22",
			},
		}

		result, err := service.Sync(c.Request.Context(), payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, WebhookResponse{
				Success: false,
				Message: "Test sync failed: " + err.Error(),
				Data:    result,
			})
			return
		}

		c.JSON(http.StatusOK, WebhookResponse{
			Success: true,
			Message: "Test sync completed successfully",
			Data:    result,
		})
	}
}
