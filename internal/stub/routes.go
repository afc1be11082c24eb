package stub

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/example/stokai/internal/config"
)

// NewApp builds the fiber application implementing the storefront REST
// contract.
func NewApp(db *gorm.DB, cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Stokai Stub Backend",
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	Register(app, db, cfg)
	return app
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	authHandler := NewAuthHandler(db, cfg)
	cartHandler := NewCartHandler(db)

	user := app.Group("/user")

	user.Post("/login", authHandler.Login)
	user.Post("/sign_up", authHandler.SignUp)
	user.Post("/verify_otp", authHandler.VerifyOTP)
	user.Post("/logout", authHandler.Logout)

	protected := user.Group("", AuthRequired(cfg))

	protected.Get("/profile", authHandler.GetProfile)
	protected.Post("/profile_update", authHandler.UpdateProfile)

	cart := protected.Group("/cart")
	cart.Get("/list/:page", cartHandler.List)
	cart.Post("/addToCart", cartHandler.Add)
	cart.Post("/updateToCart", cartHandler.Update)

	coupon := protected.Group("/coupon")
	coupon.Post("/check_valid_coupon", cartHandler.CheckCoupon)
}
