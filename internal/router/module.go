package router

import "github.com/gin-gonic/gin"

// Module registers one feature's routes on the group it is given.
type Module interface {
	Register(rg *gin.RouterGroup)
}
