package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	Orders     *OrderHandler
	Promotions *PromotionHandler
	Catalog    *CatalogHandler
	Blog       *BlogHandler
	Customers  *CustomerHandler
	Locations  *LocationHandler
	Security   *Security
}

// Register mounts all API routes on the given router. Back-office mutations
// sit behind API-key auth; storefront reads are public.
func (h Handlers) Register(r gin.IRouter) {
	api := r.Group("/api")
	admin := h.Security.RequireScope(ScopeAdmin)

	orders := api.Group("/orders")
	{
		orders.POST("", h.Orders.Place)
		orders.GET("", admin, h.Orders.List)
		orders.GET("/:id/detail", admin, h.Orders.Detail)
		orders.POST("/:id/change-status", admin, h.Orders.ChangeStatus)
	}

	promos := api.Group("/promotions", admin)
	{
		promos.POST("", h.Promotions.Create)
		promos.GET("", h.Promotions.List)
		promos.GET("/:id", h.Promotions.Detail)
		promos.POST("/:id/update", h.Promotions.Update)
		promos.DELETE("/:id/delete", h.Promotions.Delete)
		promos.POST("/:id/change-status", h.Promotions.ChangeStatus)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.POST("", admin, h.Catalog.CreateProduct)
		products.POST("/:id/update", admin, h.Catalog.UpdateProduct)
		products.DELETE("/:id/delete", admin, h.Catalog.DeleteProduct)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.Catalog.ListCategories)
		categories.POST("", admin, h.Catalog.CreateCategory)
		categories.DELETE("/:id/delete", admin, h.Catalog.DeleteCategory)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", h.Security.Optional(), h.Blog.List)
		posts.GET("/:slug", h.Security.Optional(), h.Blog.Get)
		posts.POST("", admin, h.Blog.Create)
		posts.POST("/:id/update", admin, h.Blog.Update)
		posts.DELETE("/:id/delete", admin, h.Blog.Delete)
	}

	customers := api.Group("/customers")
	{
		customers.POST("/track", h.Customers.Track)
		customers.GET("", admin, h.Customers.List)
	}

	locations := api.Group("/locations")
	{
		locations.GET("/provinces", h.Locations.Provinces)
		locations.GET("/provinces/:code/districts", h.Locations.Districts)
		locations.GET("/districts/:code/wards", h.Locations.Wards)
	}
}
