package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/shipfastordie/shipboard/internal/models"
	"github.com/shipfastordie/shipboard/internal/services"
	"github.com/shipfastordie/shipboard/pkg/logger"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

type addProductRequest struct {
	RepoName    string `json:"repo_name" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

type removeProductRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// AddProduct adds a repository to the user's products
func (h *ProductHandler) AddProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "repo_name and access_token are required",
		})
		return
	}

	product, err := h.productService.AddProduct(c.Request.Context(), c.Param("username"), req.RepoName, req.AccessToken)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"owner": product.Owner,
		"name":  product.Name,
	}).Info("product added")

	c.JSON(http.StatusCreated, product)
}

// ListProducts lists one user's products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct returns a single product by owner and repository name
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Param("username"), c.Param("repo_name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// RemoveProduct deletes a product after validating the caller's token
func (h *ProductHandler) RemoveProduct(c *gin.Context) {
	var req removeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "access_token is required",
		})
		return
	}

	if err := h.productService.RemoveProduct(c.Param("username"), c.Param("repo_name"), req.AccessToken); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Leaderboard returns every product, highest star count first
func (h *ProductHandler) Leaderboard(c *gin.Context) {
	products, err := h.productService.ListProducts("")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// ExportLeaderboard streams the leaderboard as an XLSX workbook
func (h *ProductHandler) ExportLeaderboard(c *gin.Context) {
	products, err := h.productService.ListProducts("")
	if err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []interface{}{"Rank", "Owner", "Name", "Stars", "Language", "Code Files", "URL", "Pushed At"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		respondError(c, err)
		return
	}

	for i, p := range products {
		language := ""
		if p.Language != nil {
			language = *p.Language
		}
		var codeFiles interface{}
		if p.NumCodeFiles != nil {
			codeFiles = *p.NumCodeFiles
		}
		row := []interface{}{i + 1, p.Owner, p.Name, p.StargazersCount, language, codeFiles, p.HTMLURL, models.FormatTime(p.RepoPushedAt)}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			respondError(c, err)
			return
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		logger.WithError(err).Errorf("failed to stream leaderboard export")
	}
}
