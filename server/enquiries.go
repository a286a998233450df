package server

import (
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
)

func (s *Server) createEnquiry(c *gin.Context) {
	var enquiry models.Enquiry
	if err := c.ShouldBindJSON(&enquiry); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	if enquiry.Name == "" || enquiry.Email == "" || enquiry.Comment == "" {
		badRequest(c, "name, email and comment are required")
		return
	}

	out, err := s.enquiries.Insert(c.Request.Context(), &enquiry)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, out)
}

func (s *Server) getEnquiry(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	enquiry, err := s.enquiries.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, enquiry)
}

func (s *Server) listEnquiries(c *gin.Context) {
	enquiries, err := s.enquiries.FindAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, enquiries)
}

func (s *Server) updateEnquiry(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var enquiry models.Enquiry
	if err := c.ShouldBindJSON(&enquiry); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	out, err := s.enquiries.Update(c.Request.Context(), id, &enquiry)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) deleteEnquiry(c *gin.Context) {
	id, err := repository.ValidateID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	out, err := s.enquiries.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}
