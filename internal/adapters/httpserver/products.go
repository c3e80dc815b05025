package httpserver

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phenrril/techcart/internal/adapters/export"
	"github.com/phenrril/techcart/internal/usecase"
)

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func (s *Server) listProducts(c *gin.Context) {
	params, err := usecase.ParseQueryParams(c.Query)
	if err != nil {
		fail(c, err, "")
		return
	}
	page, err := s.products.List(c.Request.Context(), params)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"products": page.Products,
		"pagination": pagination{
			Page:  page.Page,
			Limit: page.PageSize,
			Total: page.Total,
			Pages: page.TotalPages,
		},
	})
}

func (s *Server) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}
	p, err := s.products.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"product": p})
}

func queryLimit(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("limit"))
	return n
}

func (s *Server) featuredProducts(c *gin.Context) {
	list, err := s.products.Featured(c.Request.Context(), queryLimit(c))
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"products": list})
}

func (s *Server) dealProducts(c *gin.Context) {
	list, err := s.products.Deals(c.Request.Context(), queryLimit(c))
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"products": list})
}

func (s *Server) listBrands(c *gin.Context) {
	brands, err := s.products.Brands(c.Request.Context())
	if err != nil {
		fail(c, err, "Brand")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"brands": brands})
}

func (s *Server) addReview(c *gin.Context) {
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}
	var in usecase.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.reviews.Add(c.Request.Context(), id, c.GetString(ctxUserID), in)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeMessage(c, http.StatusCreated, "Review added successfully", gin.H{"product": p})
}

func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.products.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err, "Category")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"categories": cats})
}

func (s *Server) createCategory(c *gin.Context) {
	var in usecase.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := s.products.CreateCategory(c.Request.Context(), in)
	if err != nil {
		fail(c, err, "Category")
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"category": cat})
}

func (s *Server) createProduct(c *gin.Context) {
	var in usecase.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.products.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeMessage(c, http.StatusCreated, "Product created successfully", gin.H{"product": p})
}

func (s *Server) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}
	var patch usecase.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.products.Update(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeMessage(c, http.StatusOK, "Product updated successfully", gin.H{"product": p})
}

func (s *Server) deactivateProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}
	if err := s.products.Deactivate(c.Request.Context(), id); err != nil {
		fail(c, err, "Product")
		return
	}
	writeMessage(c, http.StatusOK, "Product deleted successfully", nil)
}

type stockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (s *Server) adjustStock(c *gin.Context) {
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.products.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"product": p})
}

type saleRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (s *Server) recordSale(c *gin.Context) {
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.products.RecordSale(c.Request.Context(), id, req.Quantity)
	if err != nil {
		fail(c, err, "Product")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"product": p})
}

func (s *Server) exportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.products.Export(c.Request.Context(), &buf); err != nil {
		fail(c, err, "Product")
		return
	}
	name := "products-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
