package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/phenrril/techcart/internal/usecase"
)

type Options struct {
	// JWTSecret verifies HS256 bearer tokens.
	JWTSecret   []byte
	CORSOrigins []string
}

type Server struct {
	engine    *gin.Engine
	products  *usecase.ProductUC
	reviews   *usecase.ReviewUC
	carts     *usecase.CartUC
	wishlists *usecase.WishlistUC
	secret    []byte
}

func New(opts Options, p *usecase.ProductUC, r *usecase.ReviewUC, c *usecase.CartUC, w *usecase.WishlistUC) http.Handler {
	registerValidation()

	s := &Server{
		engine:    gin.New(),
		products:  p,
		reviews:   r,
		carts:     c,
		wishlists: w,
		secret:    opts.JWTSecret,
	}
	s.engine.Use(
		RequestID(),
		Logging(),
		Recovery(),
		cors.New(corsConfig(opts.CORSOrigins)),
	)
	s.routes()
	return s.engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")

	// catalog, public
	api.GET("/products", s.listProducts)
	api.GET("/products/featured/list", s.featuredProducts)
	api.GET("/products/deals/list", s.dealProducts)
	api.GET("/products/brands/list", s.listBrands)
	api.GET("/products/:id", s.getProduct)
	api.GET("/categories", s.listCategories)

	authed := api.Group("", s.Authenticate())
	authed.POST("/products/:id/reviews", s.addReview)

	cart := authed.Group("/cart")
	{
		cart.GET("", s.getCart)
		cart.POST("/items", s.addCartItem)
		cart.PUT("/items/:productId", s.setCartItem)
		cart.DELETE("/items/:productId", s.removeCartItem)
		cart.DELETE("", s.clearCart)
	}

	wishlist := authed.Group("/wishlist")
	{
		wishlist.GET("", s.getWishlist)
		wishlist.POST("/:productId", s.addWishlistItem)
		wishlist.DELETE("/:productId", s.removeWishlistItem)
	}

	admin := authed.Group("", RequireRole(RoleAdmin))
	{
		admin.POST("/products", s.createProduct)
		admin.PUT("/products/:id", s.updateProduct)
		admin.DELETE("/products/:id", s.deactivateProduct)
		admin.PATCH("/products/:id/stock", s.adjustStock)
		admin.POST("/products/:id/sales", s.recordSale)
		admin.POST("/categories", s.createCategory)
		admin.GET("/admin/products/export", s.exportProducts)
	}
}
