package handler

import (
	"github.com/gin-gonic/gin"

	accountapp "github.com/erp/ledger/internal/application/account"
)

// AccountHandler handles account and statement endpoints
type AccountHandler struct {
	BaseHandler
	accountService   *accountapp.AccountService
	statementService *accountapp.StatementService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *accountapp.AccountService, statementService *accountapp.StatementService) *AccountHandler {
	return &AccountHandler{
		accountService:   accountService,
		statementService: statementService,
	}
}

// RegisterRoutes mounts the account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/accounts")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.POST("/statement", h.Statement)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/debit", h.AddDebit)
	g.POST("/:id/credit", h.AddCredit)
}

// Create handles POST /accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req accountapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	a, err := h.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// GetByID handles GET /accounts/:id
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "account")
		return
	}

	a, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// List handles GET /accounts
func (h *AccountHandler) List(c *gin.Context) {
	var filter accountapp.ListAccountsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.accountService.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AddDebit handles POST /accounts/:id/debit
func (h *AccountHandler) AddDebit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "account")
		return
	}
	var req accountapp.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	a, err := h.accountService.AddDebit(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// AddCredit handles POST /accounts/:id/credit
func (h *AccountHandler) AddCredit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.InvalidID(c, "account")
		return
	}
	var req accountapp.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	a, err := h.accountService.AddCredit(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Statement handles POST /accounts/statement
func (h *AccountHandler) Statement(c *gin.Context) {
	var req accountapp.StatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	st, err := h.statementService.BuildStatement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, st)
}
