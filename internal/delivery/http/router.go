package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"chyrp/internal/delivery/http/controllers"
	"chyrp/internal/delivery/http/middleware"
	"chyrp/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Cascade     *controllers.CascadeController
	Users       *controllers.UserController
	Groups      *controllers.GroupController
	Posts       *controllers.PostController
	Tags        *controllers.TagController
	Categories  *controllers.CategoryController
	Comments    *controllers.CommentController
	Views       *controllers.ViewController
	Interaction *controllers.InteractionController
	Media       *controllers.MediaController
}

// Auth carries what the auth middleware needs to resolve bearer tokens.
type Auth struct {
	Verifier domain.TokenVerifier
	Users    middleware.UserLoader
	Logger   *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, auth Auth) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(auth.Verifier, auth.Users, auth.Logger)
	optional := middleware.OptionalAuth(auth.Verifier, auth.Users, auth.Logger)
	// can requires a signed-in user holding perm.
	can := func(perm domain.Permission, h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequirePermission(perm)(h))
	}

	// Cascade feeds
	mux.HandleFunc("GET /cascade/posts", c.Cascade.Posts)
	mux.HandleFunc("GET /cascade/tags/{tagID}/posts", c.Cascade.ByTag)
	mux.HandleFunc("GET /cascade/categories/{categoryID}/posts", c.Cascade.ByCategory)
	mux.HandleFunc("GET /cascade/user/{userID}/posts", c.Cascade.ByUser)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Users.SignUp)
	mux.HandleFunc("POST /auth/login", c.Users.Login)

	// Users and groups
	mux.HandleFunc("GET /users/me", authed(c.Users.GetMe))
	mux.HandleFunc("GET /users/{userID}", c.Users.GetByID)
	mux.HandleFunc("POST /users/{userID}/favorite", authed(c.Interaction.Favorite))
	mux.HandleFunc("POST /groups", can(domain.PermAddGroup, c.Groups.Create))
	mux.HandleFunc("GET /groups", authed(c.Groups.List))

	// Posts
	mux.HandleFunc("POST /posts", authed(c.Posts.Create))
	mux.HandleFunc("POST /posts/quote", authed(c.Posts.CreateQuote))
	mux.HandleFunc("POST /posts/link", authed(c.Posts.CreateLink))
	mux.HandleFunc("GET /posts", c.Posts.List)
	mux.HandleFunc("GET /posts/popular", c.Views.Popular)
	mux.HandleFunc("GET /posts/{postID}/{sub}", postSubroutes(c))
	mux.HandleFunc("GET /posts/{postID}", c.Posts.GetByID)
	mux.HandleFunc("PUT /posts/{postID}", authed(c.Posts.Update))
	mux.HandleFunc("DELETE /posts/{postID}", authed(c.Posts.Delete))
	mux.HandleFunc("GET /search/posts", c.Posts.Search)

	// Tags
	mux.HandleFunc("POST /tags", can(domain.PermAddPost, c.Tags.Create))
	mux.HandleFunc("GET /tags", c.Tags.List)
	mux.HandleFunc("GET /tags/popular", c.Tags.Popular)
	mux.HandleFunc("POST /tags/get-or-create", authed(c.Tags.GetOrCreate))
	mux.HandleFunc("GET /tags/slug/{slug}", c.Tags.GetBySlug)
	mux.HandleFunc("GET /tags/{tagID}", c.Tags.GetByID)
	mux.HandleFunc("PUT /tags/{tagID}", can(domain.PermEditPost, c.Tags.Update))
	mux.HandleFunc("DELETE /tags/{tagID}", can(domain.PermDeletePost, c.Tags.Delete))
	mux.HandleFunc("POST /posts/{postID}/tags/{tagID}", authed(c.Tags.Attach))
	mux.HandleFunc("DELETE /posts/{postID}/tags/{tagID}", authed(c.Tags.Detach))

	// Categories
	mux.HandleFunc("POST /categories", can(domain.PermAddPost, c.Categories.Create))
	mux.HandleFunc("GET /categories", c.Categories.List)
	mux.HandleFunc("GET /categories/tree", c.Categories.Tree)
	mux.HandleFunc("GET /categories/popular", c.Categories.Popular)
	mux.HandleFunc("GET /categories/for-dropdown", c.Categories.ForDropdown)
	mux.HandleFunc("GET /categories/slug/{slug}", c.Categories.GetBySlug)
	mux.HandleFunc("GET /categories/{categoryID}", c.Categories.GetByID)
	mux.HandleFunc("PUT /categories/{categoryID}", can(domain.PermEditPost, c.Categories.Update))
	mux.HandleFunc("DELETE /categories/{categoryID}", can(domain.PermDeletePost, c.Categories.Delete))
	mux.HandleFunc("POST /posts/{postID}/categories/{categoryID}", authed(c.Categories.Attach))
	mux.HandleFunc("DELETE /posts/{postID}/categories/{categoryID}", authed(c.Categories.Detach))

	// Comments
	mux.HandleFunc("POST /posts/{postID}/comments", authed(c.Comments.Create))
	mux.HandleFunc("GET /comments/{commentID}", c.Comments.GetByID)
	mux.HandleFunc("PUT /comments/{commentID}", authed(c.Comments.Update))
	mux.HandleFunc("DELETE /comments/{commentID}", authed(c.Comments.Delete))
	mux.HandleFunc("POST /comments/{commentID}/approve", can(domain.PermEditPost, c.Comments.Approve))
	mux.HandleFunc("POST /comments/{commentID}/disapprove", can(domain.PermEditPost, c.Comments.Disapprove))

	// Views and analytics
	mux.HandleFunc("POST /views/posts/{postID}", optional(c.Views.Track))
	mux.HandleFunc("GET /analytics/overview", c.Views.Overview)

	// Interactions
	mux.HandleFunc("POST /posts/{postID}/like", can(domain.PermLikePost, c.Interaction.Like))
	mux.HandleFunc("POST /posts/{postID}/bookmark", authed(c.Interaction.Bookmark))

	// Media
	mux.HandleFunc("POST /media", authed(c.Media.Register))
	mux.HandleFunc("GET /media", authed(c.Media.ListMine))
	mux.HandleFunc("GET /media/{mediaID}/info", c.Media.GetInfo)
	mux.HandleFunc("DELETE /media/{mediaID}", authed(c.Media.Delete))
	mux.HandleFunc("DELETE /admin/cleanup-media", can(domain.PermDeleteUser, c.Media.Cleanup))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// postSubroutes serves GET /posts/slug/{clean}, /posts/{postID}/comments, /views and
// /view-stats. ServeMux rejects /posts/slug/{clean} next to /posts/{postID}/views as
// overlapping patterns, so they share one dispatcher.
func postSubroutes(c Controllers) http.HandlerFunc {
	byName := map[string]http.HandlerFunc{
		"comments":   c.Comments.ListByPost,
		"views":      c.Views.List,
		"view-stats": c.Views.Stats,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("postID") == "slug" {
			r.SetPathValue("clean", r.PathValue("sub"))
			c.Posts.GetBySlug(w, r)
			return
		}
		h, ok := byName[r.PathValue("sub")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}
}

// Handler wraps mux with the request-scoped middleware chain: request ID, access log, CORS.
func Handler(mux http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, mux)))
}
