package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPush_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.h.Push = nil

	assert.Equal(t, http.StatusServiceUnavailable, env.request(http.MethodGet, "/api/v1/push/public-key", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable,
		env.asAdmin(http.MethodPost, "/api/v1/admin/push/send", jsonBody(t, gin.H{"title": "Hi"})).Code)
}

func TestPush_SubscribeAndBroadcast(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/v1/push/public-key", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BPublicKey", decode(t, rec)["public_key"])

	rec = env.asAdmin(http.MethodPost, "/api/v1/admin/push/send", jsonBody(t, gin.H{"title": "Sale", "body": "10% off"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No subscribers found", decode(t, rec)["message"])

	rec = env.request(http.MethodPost, "/api/v1/push/subscribe", jsonBody(t, gin.H{
		"endpoint": "https://push.example/abc",
		"keys":     gin.H{"p256dh": "key", "auth": "secret"},
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(http.MethodPost, "/api/v1/push/subscribe", jsonBody(t, gin.H{"endpoint": "https://push.example/def"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.asAdmin(http.MethodPost, "/api/v1/admin/push/send", jsonBody(t, gin.H{"title": "Sale", "body": "10% off", "url": "/shop"}))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Notifications sent", body["message"])
	assert.Equal(t, float64(1), body["success"])
	assert.Equal(t, "/shop", env.push.messages[1].URL)

	rec = env.request(http.MethodPost, "/api/v1/push/unsubscribe", jsonBody(t, gin.H{"endpoint": "https://push.example/abc"}))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.request(http.MethodPost, "/api/v1/push/unsubscribe", jsonBody(t, gin.H{"endpoint": "https://push.example/abc"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
