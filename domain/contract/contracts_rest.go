package contract

import (
	"errors"
	"net/http"

	"archon/bizerror"
	"archon/domain"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathContracts = "/v1/contracts"

func RegisterContractsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathContracts, middleWares...)

	g.POST("", handleCreateContract)
	g.GET("", handleQueryContracts)
	g.GET(":id", handleDetailContract)
	g.PUT(":id/finance-allocation", handleAllocateFinance)
	g.PUT(":id/operations-setup", handleSetupOperations)
	g.POST(":id/staff", handleAddStaff)
}

func handleCreateContract(c *gin.Context) {
	creation := domain.ContractCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := CreateContractFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleQueryContracts(c *gin.Context) {
	query := domain.ContractQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	details, err := QueryContractsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, details)
}

// handleDetailContract accepts either the numeric id or the contract
// number as the path parameter.
func handleDetailContract(c *gin.Context) {
	detail, err := DetailContractFunc(c.Param("id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleAllocateFinance(c *gin.Context) {
	id := parseContractId(c)
	alloc := domain.FinanceAllocation{}
	if err := c.ShouldBindBodyWith(&alloc, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := AllocateFinanceFunc(id, &alloc, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleSetupOperations(c *gin.Context) {
	id := parseContractId(c)
	setup := domain.OperationsSetup{}
	if err := c.ShouldBindBodyWith(&setup, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := SetupOperationsFunc(id, &setup, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleAddStaff(c *gin.Context) {
	id := parseContractId(c)
	assignment := domain.StaffAssignment{}
	if err := c.ShouldBindBodyWith(&assignment, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	entry, err := AddStaffFunc(id, &assignment, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, entry)
}

func parseContractId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
