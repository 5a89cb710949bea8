package search

import (
	"net/http"

	"archon/domain"
	"archon/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathContractSearch = "/v1/contract-search"

func RegisterContractSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathContractSearch, middleWares...)
	g.GET("", handleSearchContracts)
}

func handleSearchContracts(c *gin.Context) {
	query := domain.ContractQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	records, err := SearchContractsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
