package routes

import (
	"time"

	"github.com/kataras/iris/v12"
)

// Status returns the liveness handler for GET /api/status.
func Status(environment string) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": environment,
		})
	}
}
