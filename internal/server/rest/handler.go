package rest

import (
	"net/http"

	"github.com/dmitrijs2005/messagely/internal/server/auth"
	"github.com/dmitrijs2005/messagely/internal/server/users"
	"github.com/dmitrijs2005/messagely/internal/shared"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createMessageRequest struct {
	ToUsername string `json:"to_username" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

// register creates an account and logs it in: the response carries a token so
// the client does not have to follow up with /login.
func (s *RESTServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, shared.ErrorBadRequest)
		return
	}

	user, err := s.users.Register(c.Request.Context(), users.RegisterParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	token, err := auth.IssueToken(user.Username, s.secretKey)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (s *RESTServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, shared.ErrorBadRequest)
		return
	}

	ok, err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if !ok {
		s.abortWithError(c, shared.ErrorUnauthorized)
		return
	}

	token, err := auth.IssueToken(req.Username, s.secretKey)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	// The login already succeeded; a failed timestamp write is not worth a 500.
	if err := s.users.UpdateLoginTimestamp(c.Request.Context(), req.Username); err != nil {
		s.logger.Error(c.Request.Context(), "error updating login timestamp", "username", req.Username, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *RESTServer) listUsers(c *gin.Context) {
	list, err := s.users.All(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

func (s *RESTServer) getUser(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *RESTServer) messagesTo(c *gin.Context) {
	list, err := s.messages.To(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

func (s *RESTServer) messagesFrom(c *gin.Context) {
	list, err := s.messages.From(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

// getMessage fetches a message and only then checks visibility, so the check
// runs against the stored participants rather than anything client-supplied.
func (s *RESTServer) getMessage(c *gin.Context) {
	msg, err := s.messages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if !msg.VisibleTo(c.GetString(identityKey)) {
		s.abortWithError(c, shared.ErrorUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// createMessage sends a message from the token identity. The sender cannot be
// spoofed through the request body.
func (s *RESTServer) createMessage(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, shared.ErrorBadRequest)
		return
	}

	msg, err := s.messages.Create(c.Request.Context(), c.GetString(identityKey), req.ToUsername, req.Body)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// markMessageRead flips read_at for the recipient. The sender can see the
// message but may not mark it read.
func (s *RESTServer) markMessageRead(c *gin.Context) {
	id := c.Param("id")

	msg, err := s.messages.Get(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if c.GetString(identityKey) != msg.ToUser.Username {
		s.abortWithError(c, shared.ErrorUnauthorized)
		return
	}

	receipt, err := s.messages.MarkRead(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": receipt})
}
