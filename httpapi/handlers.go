package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonwraymond/catalogd/auth"
	"github.com/jonwraymond/catalogd/catalog"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type accountResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type signInResponse struct {
	AccessToken string `json:"accessToken"`
}

type bookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author" binding:"required"`
	Pages    int    `json:"numberOfPages" binding:"required,gt=0"`
	Language string `json:"language" binding:"required,oneof=en fr"`
}

func (s *Server) handleSignUp(c *gin.Context) {
	var req credentialsRequest
	if err := bindStrict(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	a, err := s.deps.Accounts.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountResponse{ID: a.ID, Email: a.Identifier, Role: string(a.Role)})
}

func (s *Server) handleSignIn(c *gin.Context) {
	var req credentialsRequest
	if err := bindStrict(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	res, err := s.deps.Accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, signInResponse{AccessToken: res.AccessToken})
}

func (s *Server) handleMe(c *gin.Context) {
	p := auth.PrincipalFromContext(c.Request.Context())
	if p == nil {
		s.writeError(c, auth.ErrMissingCredentials)
		return
	}
	c.JSON(http.StatusOK, accountResponse{ID: p.SubjectID, Email: p.Identifier, Role: string(p.Role)})
}

func (s *Server) handleListBooks(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Books.List(c.Request.Context(), c.Query("search")))
}

func (s *Server) handleGetBook(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	b, err := s.deps.Books.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) handleCreateBook(c *gin.Context) {
	var req bookRequest
	if err := bindStrict(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	b, err := s.deps.Books.Create(c.Request.Context(), catalog.Book{
		Title:    req.Title,
		Author:   req.Author,
		Pages:    req.Pages,
		Language: req.Language,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *Server) handleDeleteBook(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.deps.Books.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bookID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: id must be a positive integer", errBadRequest)
	}
	return id, nil
}
