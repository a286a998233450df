package server

import (
	"net/http"

	"github.com/example/storefront/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// envelope is the uniform response shape: a stable code, a human-readable
// message, and the payload (null on failure).
type envelope struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Code: "SUCCESS", Message: "Success", Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Code: "SUCCESS", Message: "Success", Data: data})
}

func fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.JSON(kind.HTTPStatus(), envelope{Code: kind.String(), Message: apperr.MessageOf(err), Data: nil})
}

func badRequest(c *gin.Context, message string) {
	fail(c, apperr.New(apperr.KindBadRequest, message))
}
