package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) getWishlist(c *gin.Context) {
	w, err := s.wishlists.LoadOrCreate(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		fail(c, err, "Wishlist")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"wishlist": w})
}

func (s *Server) addWishlistItem(c *gin.Context) {
	id, ok := pathID(c, "productId", "Product")
	if !ok {
		return
	}
	w, err := s.wishlists.Add(c.Request.Context(), c.GetString(ctxUserID), id)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeMessage(c, http.StatusOK, "Product added to wishlist", gin.H{"wishlist": w})
}

func (s *Server) removeWishlistItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		s.getWishlist(c)
		return
	}
	w, err := s.wishlists.Remove(c.Request.Context(), c.GetString(ctxUserID), id)
	if err != nil {
		fail(c, err, "Wishlist")
		return
	}
	writeMessage(c, http.StatusOK, "Product removed from wishlist", gin.H{"wishlist": w})
}
