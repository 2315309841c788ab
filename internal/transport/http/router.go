package httpserver

import (
	"github.com/labstack/echo/v4"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/handlers"
	"goodsmarket/internal/ratelimit"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	Home      *handlers.HomeHandler
	Questions *handlers.QuestionHandler
	Details   *handlers.DetailsHandler
	Comments  *handlers.CommentHandler
	Baskets   *handlers.BasketHandler
	Products  *handlers.ProductHandler
	Tags      *handlers.TagsHandler
	Search    *handlers.SearchHandler
	Tokens    *auth.TokenService
	Limiter   *ratelimit.Limiter
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	api.POST("/registration", d.Auth.Register)
	api.POST("/login", d.Auth.Login)
	api.POST("/logout", d.Auth.LogOut)

	// The limiter needs the caller identity resolved first, so it follows
	// the auth middleware on every route.
	throttle := d.Limiter.Middleware

	api.GET("", d.Home.Home, d.Tokens.Optional, throttle)
	api.POST("", d.Home.RecordSearch, d.Tokens.Optional, throttle)

	api.GET("/question", d.Questions.List, d.Tokens.Require, throttle)
	api.POST("/question", d.Questions.Create, d.Tokens.Require, throttle)

	api.GET("/details/:id", d.Details.GetDetails, d.Tokens.Optional, throttle)
	api.POST("/details/:id", d.Details.PostDetails, d.Tokens.Require, throttle)

	// The comment resource guards ownership itself, for every verb; auth is
	// optional here so non-owners (including anonymous callers) get 403.
	api.GET("/details/:id/:commentID", d.Comments.GetComment, d.Tokens.Optional, throttle)
	api.PUT("/details/:id/:commentID", d.Comments.UpdateComment, d.Tokens.Optional, throttle)
	api.DELETE("/details/:id/:commentID", d.Comments.DeleteComment, d.Tokens.Optional, throttle)

	api.GET("/basket/:id", d.Baskets.GetBasket, d.Tokens.Require, throttle)
	api.PUT("/basket/:id", d.Baskets.AddToBasket, d.Tokens.Require, throttle)
	api.DELETE("/basket/:id", d.Baskets.ClearBasket, d.Tokens.Require, throttle)

	api.GET("/tags/:tag", d.Tags.FilteredByTag, d.Tokens.Optional, throttle)
	api.GET("/search", d.Search.Search, d.Tokens.Optional, throttle)

	api.POST("/products", d.Products.CreateProduct, d.Tokens.Require, throttle)
	api.PATCH("/products/:id", d.Products.PatchProduct, d.Tokens.Require, throttle)
	api.DELETE("/products/:id", d.Products.DeleteProduct, d.Tokens.Require, throttle)
}
