package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

type cartView struct {
	*domain.Cart
	TotalItems int     `json:"totalItems"`
	Subtotal   float64 `json:"subtotal"`
}

func writeCart(c *gin.Context, cart *domain.Cart) {
	writeJSON(c, http.StatusOK, gin.H{"cart": cartView{Cart: cart, TotalItems: cart.TotalItems(), Subtotal: cart.Subtotal()}})
}

func (s *Server) getCart(c *gin.Context) {
	cart, err := s.carts.LoadOrCreate(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		fail(c, err, "Cart")
		return
	}
	writeCart(c, cart)
}

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity" binding:"omitempty,max=10000"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	cart, err := s.carts.AddItem(c.Request.Context(), c.GetString(ctxUserID), uuid.MustParse(req.ProductID), qty)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeCart(c, cart)
}

type setCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=10000"`
}

func (s *Server) setCartItem(c *gin.Context) {
	id, ok := pathID(c, "productId", "Cart item")
	if !ok {
		return
	}
	var req setCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := s.carts.SetQuantity(c.Request.Context(), c.GetString(ctxUserID), id, *req.Quantity)
	if err != nil {
		fail(c, err, "Cart item")
		return
	}
	writeCart(c, cart)
}

func (s *Server) removeCartItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		// nothing to remove
		s.getCart(c)
		return
	}
	cart, err := s.carts.RemoveItem(c.Request.Context(), c.GetString(ctxUserID), id)
	if err != nil {
		fail(c, err, "Cart")
		return
	}
	writeCart(c, cart)
}

func (s *Server) clearCart(c *gin.Context) {
	cart, err := s.carts.Clear(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		fail(c, err, "Cart")
		return
	}
	writeCart(c, cart)
}
