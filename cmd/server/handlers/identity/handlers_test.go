package identity

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-pulse/cmd/server/handlers/httperr"
	"roster-pulse/internal/services/identity"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler})
	svc := identity.NewService("test-secret-key-that-is-long-enough!", time.Hour)
	h := NewHandlers(svc, validator.New())
	app.Post("/identity/claim", h.Claim)
	return app
}

func postClaim(t *testing.T, app *fiber.App, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, "/identity/claim", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestClaimIssuesToken(t *testing.T) {
	app := newTestApp(t)

	resp, data := postClaim(t, app, `{"name":"  Coach Alex "}`)
	assert.Equal(t, 201, resp.StatusCode)

	var body ClaimResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "Coach Alex", body.Name)
	assert.NotEmpty(t, body.Token)
}

func TestClaimRejectsBadNames(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{}`},
		{name: "colon in name", body: `{"name":"Alex: QB"}`},
		{name: "newline in name", body: `{"name":"Alex\nSam"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postClaim(t, app, tt.body)
			assert.Equal(t, 400, resp.StatusCode)
		})
	}
}

func TestClaimRejectsMalformedJSON(t *testing.T) {
	app := newTestApp(t)
	resp, _ := postClaim(t, app, `{not json`)
	assert.Equal(t, 400, resp.StatusCode)
}
