package transport

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"go.uber.org/zap"
)

func TestErrorHandlerStatusMapping(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "fiber error keeps its code", err: fiber.ErrTeapot, wantStatus: fiber.StatusTeapot},
		{name: "not found", err: fmt.Errorf("schedule missing: %w", domain.ErrNotFound), wantStatus: fiber.StatusNotFound},
		{name: "validation", err: fmt.Errorf("%w: bad input", domain.ErrValidation), wantStatus: fiber.StatusBadRequest},
		{name: "conflict", err: domain.ErrConflict, wantStatus: fiber.StatusConflict},
		{name: "configuration", err: domain.ErrConfiguration, wantStatus: fiber.StatusUnprocessableEntity},
		{name: "unknown error", err: fmt.Errorf("boom"), wantStatus: fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
			app.Get("/fail", func(c *fiber.Ctx) error {
				return tc.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}
