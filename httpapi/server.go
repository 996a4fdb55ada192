// Package httpapi serves catalogd over HTTP with gin. Every protected
// route runs the access guard for its operation before the handler.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonwraymond/catalogd/account"
	"github.com/jonwraymond/catalogd/auth"
	"github.com/jonwraymond/catalogd/catalog"
	"github.com/jonwraymond/catalogd/health"
	"github.com/jonwraymond/catalogd/observe"
)

// Accounts registers accounts and signs them in. *account.Service
// satisfies it.
type Accounts interface {
	SignUp(ctx context.Context, identifier, secret string) (account.Account, error)
	SignIn(ctx context.Context, identifier, secret string) (account.SignInResult, error)
}

// Books is the protected catalog. *catalog.Service satisfies it.
type Books interface {
	List(ctx context.Context, search string) []catalog.Book
	Get(ctx context.Context, id int64) (catalog.Book, error)
	Create(ctx context.Context, b catalog.Book) (catalog.Book, error)
	Delete(ctx context.Context, id int64) error
}

// Deps are the collaborators a Server routes to.
type Deps struct {
	Accounts Accounts
	Books    Books
	Guard    *auth.Guard
	Health   *health.Aggregator

	// Metrics serves /metrics when set.
	Metrics http.Handler

	Logger observe.Logger
}

// Server is the catalogd HTTP API.
type Server struct {
	r    *gin.Engine
	deps Deps
	log  observe.Logger
}

// New builds the router.
func New(deps Deps) *Server {
	r := gin.New()
	s := &Server{r: r, deps: deps, log: deps.Logger}
	if s.log == nil {
		s.log = observe.NopLogger()
	}
	if s.deps.Health == nil {
		s.deps.Health = health.NewAggregator(0)
	}

	r.Use(gin.Recovery(), requestID(), s.accessLog())
	r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	s.routes()
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Role requirements of every protected endpoint. The books group admits
// admins and editors; individual operations override it.
var (
	accountResource = auth.NewResource("account", auth.Inherit())
	opMe            = accountResource.Operation("me", auth.AnyAuthenticated())

	booksResource = auth.NewResource("books", auth.RequireRoles(auth.RoleAdmin, auth.RoleEditor))
	opListBooks   = booksResource.Operation("list", auth.AnyAuthenticated())
	opGetBook     = booksResource.Operation("get", auth.AnyAuthenticated())
	opCreateBook  = booksResource.Operation("create", auth.Inherit())
	opDeleteBook  = booksResource.Operation("delete", auth.RequireRoles(auth.RoleAdmin))
)

func (s *Server) routes() {
	s.r.GET("/healthz", gin.WrapF(health.LivenessHandler()))
	s.r.GET("/readyz", gin.WrapF(health.ReadinessHandler(s.deps.Health)))
	s.r.GET("/health", gin.WrapF(health.DetailedHandler(s.deps.Health)))
	if s.deps.Metrics != nil {
		s.r.GET("/metrics", gin.WrapH(s.deps.Metrics))
	}

	a := s.r.Group("/auth")
	{
		a.POST("/signup", s.handleSignUp)
		a.POST("/signin", s.handleSignIn)
		a.GET("/me", s.guard(opMe), s.handleMe)
	}

	b := s.r.Group("/books")
	{
		b.GET("", s.guard(opListBooks), s.handleListBooks)
		b.GET("/:id", s.guard(opGetBook), s.handleGetBook)
		b.POST("", s.guard(opCreateBook), s.handleCreateBook)
		b.DELETE("/:id", s.guard(opDeleteBook), s.handleDeleteBook)
	}
}
