package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/app/repositories"
	"github.com/ritahmida/boutique/app/services"
	"github.com/ritahmida/boutique/pkg/bind"
	"github.com/ritahmida/boutique/pkg/logger"
	"github.com/ritahmida/boutique/pkg/resource"
	"github.com/ritahmida/boutique/pkg/response"
	"github.com/ritahmida/boutique/pkg/storage"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

type productRequest struct {
	Name        string           `json:"name"        validate:"required,min=2,max=255"`
	Description string           `json:"description" validate:"nullable,max=10000"`
	Category    string           `json:"category"    validate:"required,in=jumpsuit,robe,jupe"`
	Price       float64          `json:"price"       validate:"gte=0"`
	SalePrice   *float64         `json:"sale_price"`
	IsNew       bool             `json:"is_new"`
	Media       []mediaRequest   `json:"media"`
	Variants    []models.Variant `json:"variants"`
}

type mediaRequest struct {
	URL  string `json:"url"  validate:"required,url"`
	Type string `json:"type" validate:"required,in=image,video"`
}

// Index returns the catalog, served from cache when warm.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	products, err := c.service.List()
	if err != nil {
		logger.WithCtx(r.Context()).Error("product: list failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	response.SuccessCount(w, products, len(products))
}

// Catalog returns one page of storefront cards, optionally filtered by
// category (?page, ?per_page, ?category).
func (c *ProductController) Catalog(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 12)
	if perPage < 1 || perPage > 50 {
		perPage = 12
	}

	category := r.URL.Query().Get("category")
	if category != "" && !models.Category(category).Valid() {
		response.ValidationError(w, map[string]string{"category": "unknown category"})
		return
	}

	products, total, err := c.service.Paginate(category, page, perPage)
	if err != nil {
		logger.WithCtx(r.Context()).Error("product: catalog failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	resource.CollectionOf(catalogCard{}, products).
		WithPagination(resource.Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		}).
		Respond(w)
}

// Show returns one product with variants and ordered media.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := c.service.Get(id)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Success(w, product)
}

// Store creates a product with its initial variants and media links.
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	in, ok := c.bindProduct(w, r)
	if !ok {
		return
	}

	product := c.toModel(in)
	if err := c.service.Create(&product); err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Created(w, product)
}

// Update overwrites a product's own columns. Variants are edited through
// the dedicated bulk-replace endpoint.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	in, ok := c.bindProduct(w, r)
	if !ok {
		return
	}

	product, err := c.service.Get(id)
	if err != nil {
		c.renderError(w, r, err)
		return
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Category = models.Category(in.Category)
	product.Price = in.Price
	product.SalePrice = in.SalePrice
	product.IsNew = in.IsNew

	if err := c.service.Update(&product); err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Success(w, product)
}

// Destroy deletes a product. Existing orders keep their product id.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := c.service.Delete(id); err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Message(w, "Product deleted")
}

// ReplaceVariants overwrites the product's variant list wholesale (admin
// bulk edit; no stock-delta semantics).
func (c *ProductController) ReplaceVariants(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var body struct {
		Variants []models.Variant `json:"variants"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.service.ReplaceVariants(id, body.Variants); err != nil {
		c.renderError(w, r, err)
		return
	}

	product, err := c.service.Get(id)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Success(w, product)
}

// UploadMedia accepts a multipart file, stores it on the configured disk,
// and appends the resulting URL to the product's media list.
func (c *ProductController) UploadMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	mediaType := models.MediaType(r.FormValue("type"))
	if mediaType != models.MediaImage && mediaType != models.MediaVideo {
		response.ValidationError(w, map[string]string{"type": "must be image or video"})
		return
	}

	path := fmt.Sprintf("products/%d/%d%s", id, time.Now().UnixNano(), safeExt(header.Filename))
	if err := storage.PutStream(path, file); err != nil {
		logger.WithCtx(r.Context()).Error("product: media upload failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	link := models.MediaLink{
		ProductID: id,
		URL:       storage.URL(path),
		Type:      mediaType,
	}
	if err := c.service.AddMedia(&link); err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Created(w, link)
}

// ReorderMedia rewrites media positions from a drag-and-drop id ordering.
func (c *ProductController) ReorderMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var body struct {
		MediaIDs []uint `json:"media_ids"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if len(body.MediaIDs) == 0 {
		response.ValidationError(w, map[string]string{"media_ids": "required"})
		return
	}

	if err := c.service.ReorderMedia(id, body.MediaIDs); err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Message(w, "Media reordered")
}

func (c *ProductController) bindProduct(w http.ResponseWriter, r *http.Request) (productRequest, bool) {
	var in productRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return in, false
	} else if errs != nil {
		response.ValidationError(w, errs)
		return in, false
	}

	if in.SalePrice != nil && *in.SalePrice < 0 {
		response.ValidationError(w, map[string]string{"sale_price": "must be >= 0"})
		return in, false
	}

	return in, true
}

func (c *ProductController) toModel(in productRequest) models.Product {
	media := make([]models.MediaLink, len(in.Media))
	for i, m := range in.Media {
		media[i] = models.MediaLink{
			URL:      m.URL,
			Type:     models.MediaType(m.Type),
			Position: i,
		}
	}

	return models.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    models.Category(in.Category),
		Price:       in.Price,
		SalePrice:   in.SalePrice,
		IsNew:       in.IsNew,
		Media:       media,
		Variants:    in.Variants,
	}
}

func (c *ProductController) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		response.NotFound(w, "Product not found")
	case errors.Is(err, services.ErrInvalidVariant):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("product: operation failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func productID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return 0, false
	}
	return uint(id), true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".mp4", ".webm", ".mov":
		return ext
	default:
		return ""
	}
}
