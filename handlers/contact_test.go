package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmb-server/models"
	"jmb-server/services"
)

func TestSubmitContact(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/v1/contact", jsonBody(t, gin.H{
		"name":    "Sipho",
		"email":   "sipho@example.com",
		"service": "Solar installation",
		"phone":   "  ",
		"message": "Need a quote",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, decode(t, rec), "mailto_url")

	require.Len(t, env.store.contacts, 1)
	assert.Nil(t, env.store.contacts[0].Phone)

	require.Len(t, env.mailer.sent, 1)
	email := env.mailer.sent[0]
	assert.Equal(t, "New contact message from Sipho", email.Subject)
	assert.Equal(t, "sipho@example.com", email.ReplyTo)
	assert.Contains(t, email.Fields, services.Field{Name: "Phone", Value: "Not provided"})
	assert.Contains(t, email.Fields, services.Field{Name: "Service", Value: "Solar installation"})
}

func TestSubmitContact_RelayDownReturnsMailto(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.mailto = "mailto:" + models.DefaultContactEmail

	rec := env.request(http.MethodPost, "/api/v1/contact", jsonBody(t, gin.H{
		"name": "Sipho", "email": "sipho@example.com", "message": "Need a quote",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "mailto:"+models.DefaultContactEmail, decode(t, rec)["mailto_url"])
}

func TestSubmitContact_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		body    gin.H
		wantErr string
	}{
		{"missing name", gin.H{"email": "a@b.co", "message": "hi"}, "Name is required"},
		{"missing email", gin.H{"name": "Sipho", "message": "hi"}, "Email is required"},
		{"bad email", gin.H{"name": "Sipho", "email": "sipho", "message": "hi"}, "Please enter a valid email address"},
		{"missing message", gin.H{"name": "Sipho", "email": "a@b.co"}, "Message is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodPost, "/api/v1/contact", jsonBody(t, tt.body))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantErr, decode(t, rec)["error"])
		})
	}
	assert.Empty(t, env.store.contacts)
	assert.Empty(t, env.mailer.sent)
}

func TestContactEmailSetting(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/v1/settings/contact-email", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultContactEmail, decode(t, rec)["contact_email"])

	rec = env.asAdmin(http.MethodPut, "/api/v1/admin/settings/contact-email", jsonBody(t, gin.H{"contact_email": "not-an-email"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(http.MethodPut, "/api/v1/admin/settings/contact-email", jsonBody(t, gin.H{"contact_email": "orders@jmb.co.za"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.asAdmin(http.MethodPut, "/api/v1/admin/settings/contact-email", jsonBody(t, gin.H{"contact_email": " orders@jmb.co.za "}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/settings/contact-email", nil)
	assert.Equal(t, "orders@jmb.co.za", decode(t, rec)["contact_email"])
}

func TestGetContactSubmissions(t *testing.T) {
	env := newTestEnv(t)
	env.request(http.MethodPost, "/api/v1/contact", jsonBody(t, gin.H{"name": "A", "email": "a@b.co", "message": "one"}))
	env.request(http.MethodPost, "/api/v1/contact", jsonBody(t, gin.H{"name": "B", "email": "b@b.co", "message": "two"}))

	rec := env.asAdmin(http.MethodGet, "/api/v1/admin/contact-submissions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode(t, rec)["submissions"].([]interface{})
	require.Len(t, subs, 2)
	assert.Equal(t, "B", subs[0].(map[string]interface{})["name"])
}
