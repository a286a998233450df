package server

import (
	"github.com/example/storefront/pkg/accounts"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
)

const refreshCookie = "refreshToken"

func (s *Server) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(refreshCookie, token, maxAge, "/", "", true, true)
}

func (s *Server) register(c *gin.Context) {
	var input accounts.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	user, err := s.accounts.Register(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Token     string `json:"token"`
}

func (s *Server) login(c *gin.Context) {
	s.handleLogin(c, false)
}

func (s *Server) adminLogin(c *gin.Context) {
	s.handleLogin(c, true)
}

func (s *Server) handleLogin(c *gin.Context, admin bool) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	login := s.accounts.Login
	if admin {
		login = s.accounts.LoginAdmin
	}
	session, err := login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	s.setRefreshCookie(c, session.RefreshToken, int(s.config.JWT.RefreshExpiry.Seconds()))
	ok(c, loginResponse{
		ID:        session.User.ID.Hex(),
		FirstName: session.User.FirstName,
		LastName:  session.User.LastName,
		Email:     session.User.Email,
		Mobile:    session.User.Mobile,
		Token:     session.AccessToken,
	})
}

func (s *Server) refreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	access, err := s.accounts.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"accessToken": access})
}

func (s *Server) logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if err := s.accounts.Logout(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}
	s.setRefreshCookie(c, "", -1)
	c.Status(204)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		badRequest(c, "email is required")
		return
	}

	if err := s.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "reset mail sent"})
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (s *Server) resetPassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	user, err := s.accounts.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (s *Server) updatePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	user, err := s.accounts.UpdatePassword(c.Request.Context(), currentUser(c).ID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.accounts.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, users)
}

func (s *Server) getUser(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	user, err := s.accounts.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	user, err := s.accounts.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var input accounts.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	user, err := s.accounts.UpdateProfile(c.Request.Context(), currentUser(c).ID, input)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

type addressRequest struct {
	Address string `json:"address"`
}

func (s *Server) saveAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	user, err := s.accounts.SaveAddress(c.Request.Context(), currentUser(c).ID, req.Address)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (s *Server) blockUser(c *gin.Context) {
	s.setBlocked(c, true)
}

func (s *Server) unblockUser(c *gin.Context) {
	s.setBlocked(c, false)
}

func (s *Server) setBlocked(c *gin.Context, blocked bool) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	action := s.accounts.Unblock
	message := "user unblocked"
	if blocked {
		action = s.accounts.Block
		message = "user blocked"
	}
	if _, err := action(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": message})
}

func (s *Server) getWishlist(c *gin.Context) {
	view, err := s.accounts.GetWishlist(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}
