package routes

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"voyages-server/models"
	"voyages-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/kataras/iris/v12/middleware/logger"
	"github.com/kataras/iris/v12/middleware/rate"
	"github.com/kataras/iris/v12/middleware/recover"
	"gorm.io/gorm"
)

// Config carries the runtime settings the router needs. Secrets are injected
// here instead of read from the environment at call sites.
type Config struct {
	Environment   string
	AccessSecret  string
	RefreshSecret string
}

const maxRequestBodySize = 10 << 20 // 10MB

// NewApp assembles the full application: validation, CORS, logging, rate
// limits, auth/role guards and the route table. Store handles are injected;
// nothing in here reaches for globals.
func NewApp(cfg Config, db *gorm.DB, redisClient *redis.Client) *iris.Application {
	app := iris.New()

	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	app.Validator = v

	app.UseRouter(recover.New())
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(logger.New())
	app.Use(iris.LimitRequestBodySize(maxRequestBodySize))
	app.Use(rate.Limit(rate.Every(time.Minute/100), 100, rate.PurgeEvery(5*time.Minute, 15*time.Minute)))

	app.OnErrorCode(iris.StatusNotFound, func(ctx iris.Context) {
		ctx.JSON(iris.Map{"error": "Route not found"})
	})
	app.OnErrorCode(iris.StatusTooManyRequests, func(ctx iris.Context) {
		ctx.JSON(iris.Map{"error": "Too many requests"})
	})

	tokens := &utils.TokenManager{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		Redis:         redisClient,
	}

	accessVerifier := jwt.NewVerifier(jwt.HS256, []byte(cfg.AccessSecret))
	accessVerifier.WithDefaultBlocklist()
	accessVerifier.ErrorHandler = func(ctx iris.Context, err error) {
		switch {
		case ctx.GetHeader("Authorization") == "":
			utils.JSONError(ctx, iris.StatusUnauthorized, "Missing token")
		case errors.Is(err, jwt.ErrExpired):
			utils.JSONError(ctx, iris.StatusUnauthorized, "Token expired")
		default:
			utils.JSONError(ctx, iris.StatusUnauthorized, "Invalid token")
		}
	}
	authGuard := accessVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})
	identify := utils.UserFromToken(db)
	adminOnly := utils.RequireRole(models.RoleAdmin)

	refreshVerifier := jwt.NewVerifier(jwt.HS256, []byte(cfg.RefreshSecret))
	refreshVerifier.WithDefaultBlocklist()
	refreshVerifier.ErrorHandler = func(ctx iris.Context, err error) {
		utils.JSONError(ctx, iris.StatusUnauthorized, "Invalid token")
	}
	refreshVerifier.Extractors = append(refreshVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})
	refreshGuard := refreshVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	authHandler := &AuthHandler{DB: db, Tokens: tokens}
	destinationHandler := &DestinationHandler{DB: db}
	reservationHandler := &ReservationHandler{DB: db}

	api := app.Party("/api")
	api.Get("/status", Status(cfg.Environment))

	auth := api.Party("/auth")
	{
		// The login limiter guards the route itself, ahead of dispatch.
		loginLimiter := rate.Limit(rate.Every(15*time.Minute/5), 5, rate.PurgeEvery(5*time.Minute, 30*time.Minute))
		auth.Post("/register", authHandler.Register)
		auth.Post("/login", loginLimiter, authHandler.Login)
		auth.Post("/refresh", refreshGuard, authHandler.Refresh)
	}

	destinations := api.Party("/destinations")
	{
		destinations.Get("/", destinationHandler.List)
		destinations.Get("/{id}", destinationHandler.GetByID)
		destinations.Post("/", authGuard, identify, adminOnly, destinationHandler.Create)
		destinations.Put("/{id}", authGuard, identify, adminOnly, destinationHandler.Update)
		destinations.Delete("/{id}", authGuard, identify, adminOnly, destinationHandler.Delete)
	}

	reservations := api.Party("/reservations")
	{
		reservations.Use(authGuard, identify)
		reservations.Get("/", adminOnly, reservationHandler.ListAll)
		reservations.Get("/my-reservations", reservationHandler.ListMine)
		reservations.Post("/", reservationHandler.Create)
		reservations.Patch("/{id}/status", reservationHandler.UpdateStatus)
		reservations.Delete("/{id}", adminOnly, reservationHandler.Delete)
	}

	return app
}
