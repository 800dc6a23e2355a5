package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"flyerhub/internal/auth"
	"flyerhub/internal/config"
	"flyerhub/internal/errors"
	"flyerhub/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	flyerHandler *handler.FlyerHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Uploaded images are public.
	e.Static(cfg.PublicPrefix, cfg.UploadDir)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Secured routes. Without AUTH_ENFORCE a request may omit the token;
	// a token that is sent is always verified.
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  jwtService.Secret(),
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
			ContextKey:  handler.TokenContextKey,
			NewClaimsFunc: func(echo.Context) jwt.Claims {
				return new(auth.Claims)
			},
			Skipper: func(c echo.Context) bool {
				return !cfg.AuthEnforce && c.Request().Header.Get(echo.HeaderAuthorization) == ""
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "missing or invalid bearer token",
					Code:  "UNAUTHORIZED",
				})
			},
		}),
		RejectRevoked(tokenStore),
	)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	// Flyer routes
	flyers := secured.Group("/flyer")
	flyers.GET("/companies", flyerHandler.Companies)
	flyers.POST("/upload", flyerHandler.Upload, middleware.BodyLimit(cfg.MaxUploadSize))
	flyers.GET("/company/:companyId", flyerHandler.ListByCompany)
	flyers.GET("/download/:id", flyerHandler.Download)
	flyers.DELETE("/:id", flyerHandler.Delete)
}

// RejectRevoked answers 401 for bearer tokens that are not access tokens
// and for access tokens blacklisted at logout.
func RejectRevoked(store auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := handler.ClaimsFrom(c)
			if claims == nil {
				return next(c)
			}
			if !claims.IsAccess() {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "bearer token is not an access token",
					Code:  "INVALID_TOKEN_TYPE",
				})
			}
			if claims.ID == "" {
				return next(c)
			}
			revoked, err := store.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err == nil && revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "token has been revoked",
					Code:  "TOKEN_REVOKED",
				})
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
