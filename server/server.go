// Package server wires the HTTP surface: routing, authentication
// middleware, and the per-resource handlers.
package server

import (
	"net/http"
	"time"

	"github.com/example/storefront/pkg/accounts"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/content"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	accounts *accounts.Service
	catalog  *catalog.Service
	checkout *checkout.Service
	content  *content.Service
	users    *repository.UserStore

	coupons        *repository.CouponStore
	categories     *repository.NamedStore
	blogCategories *repository.NamedStore
	brands         *repository.NamedStore
	colors         *repository.NamedStore
	enquiries      *repository.EnquiryStore

	verify func(token string) (string, error)
}

type Deps struct {
	Accounts *accounts.Service
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Content  *content.Service
	Users    *repository.UserStore

	Coupons        *repository.CouponStore
	Categories     *repository.NamedStore
	BlogCategories *repository.NamedStore
	Brands         *repository.NamedStore
	Colors         *repository.NamedStore
	Enquiries      *repository.EnquiryStore

	VerifyToken func(token string) (string, error)
}

func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:         cfg,
		logger:         logger,
		router:         router,
		accounts:       deps.Accounts,
		catalog:        deps.Catalog,
		checkout:       deps.Checkout,
		content:        deps.Content,
		users:          deps.Users,
		coupons:        deps.Coupons,
		categories:     deps.Categories,
		blogCategories: deps.BlogCategories,
		brands:         deps.Brands,
		colors:         deps.Colors,
		enquiries:      deps.Enquiries,
		verify:         deps.VerifyToken,
	}
}

func (s *Server) SetupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/register", s.register)
		user.POST("/login", s.login)
		user.POST("/admin-login", s.adminLogin)
		user.GET("/refresh", s.refreshToken)
		user.GET("/logout", s.logout)
		user.POST("/forgot-password-token", s.forgotPassword)
		user.PUT("/reset-password/:token", s.resetPassword)
		user.PUT("/password", s.authenticate, s.updatePassword)
		user.GET("/all-users", s.authenticate, s.requireAdmin, s.listUsers)
		user.GET("/wishlist", s.authenticate, s.getWishlist)

		user.POST("/cart", s.authenticate, s.submitCart)
		user.GET("/cart", s.authenticate, s.getCart)
		user.DELETE("/empty-cart", s.authenticate, s.emptyCart)
		user.POST("/cart/apply-coupon", s.authenticate, s.applyCoupon)
		user.POST("/cart/cash-order", s.authenticate, s.createOrder)
		user.GET("/get-orders", s.authenticate, s.getOrders)
		user.PUT("/order/update-order/:id", s.authenticate, s.requireAdmin, s.updateOrderStatus)

		user.PUT("/edit-user", s.authenticate, s.updateProfile)
		user.PUT("/save-address", s.authenticate, s.saveAddress)
		user.PUT("/block-user/:id", s.authenticate, s.requireAdmin, s.blockUser)
		user.PUT("/unblock-user/:id", s.authenticate, s.requireAdmin, s.unblockUser)
		user.GET("/:id", s.authenticate, s.requireAdmin, s.getUser)
		user.DELETE("/:id", s.authenticate, s.requireAdmin, s.deleteUser)
	}

	product := api.Group("/product")
	{
		product.POST("", s.authenticate, s.requireAdmin, s.createProduct)
		product.GET("", s.listProducts)
		product.PUT("/wishlist", s.authenticate, s.toggleWishlist)
		product.PUT("/rating", s.authenticate, s.rateProduct)
		product.GET("/:id", s.getProduct)
		product.PUT("/:id", s.authenticate, s.requireAdmin, s.updateProduct)
		product.DELETE("/:id", s.authenticate, s.requireAdmin, s.deleteProduct)
	}

	blog := api.Group("/blog")
	{
		blog.POST("", s.authenticate, s.requireAdmin, s.createBlog)
		blog.GET("", s.listBlogs)
		blog.PUT("/likes", s.authenticate, s.likeBlog)
		blog.PUT("/dislikes", s.authenticate, s.dislikeBlog)
		blog.GET("/:id", s.getBlog)
		blog.PUT("/:id", s.authenticate, s.requireAdmin, s.updateBlog)
		blog.DELETE("/:id", s.authenticate, s.requireAdmin, s.deleteBlog)
	}

	s.namedRoutes(api.Group("/category"), s.categories)
	s.namedRoutes(api.Group("/blogcategory"), s.blogCategories)
	s.namedRoutes(api.Group("/brand"), s.brands)
	s.namedRoutes(api.Group("/color"), s.colors)

	coupon := api.Group("/coupon")
	{
		coupon.POST("", s.authenticate, s.requireAdmin, s.createCoupon)
		coupon.GET("", s.authenticate, s.requireAdmin, s.listCoupons)
		coupon.GET("/:id", s.authenticate, s.requireAdmin, s.getCoupon)
		coupon.PUT("/:id", s.authenticate, s.requireAdmin, s.updateCoupon)
		coupon.DELETE("/:id", s.authenticate, s.requireAdmin, s.deleteCoupon)
	}

	enquiry := api.Group("/enquiry")
	{
		enquiry.POST("", s.createEnquiry)
		enquiry.GET("", s.listEnquiries)
		enquiry.GET("/:id", s.getEnquiry)
		enquiry.PUT("/:id", s.authenticate, s.requireAdmin, s.updateEnquiry)
		enquiry.DELETE("/:id", s.authenticate, s.requireAdmin, s.deleteEnquiry)
	}
}

func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.logger.Info("API server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
