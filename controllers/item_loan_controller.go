// controllers/item_loan_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"library_circulation/app"
	"library_circulation/db"

	"github.com/gin-gonic/gin"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// GET /api/items?q=
func (ic *ItemController) Search(c *gin.Context) {
	items, err := ic.Repo.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// GET /api/items/available?q=
func (ic *ItemController) ListAvailable(c *gin.Context) {
	items, err := ic.Repo.ListAvailableItems(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// POST /api/items
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in struct {
		Key          string   `json:"key" binding:"required"`
		Title        string   `json:"title" binding:"required"`
		Contributors []string `json:"contributors"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	it, err := ic.Repo.AddItem(c.Request.Context(), db.AddItemInput{
		Key: in.Key, Title: in.Title, Contributors: in.Contributors,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// GET /api/items/:key/borrower
func (ic *ItemController) CurrentBorrower(c *gin.Context) {
	cardID, out, err := ic.Repo.CurrentBorrowerOf(c.Request.Context(), c.Param("key"))
	if err != nil {
		fail(c, err)
		return
	}
	if !out {
		c.JSON(http.StatusOK, app.H{"out": false})
		return
	}
	c.JSON(http.StatusOK, app.H{"out": true, "cardId": cardID})
}

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// GET /api/loans?q=
func (lc *LoanController) ListActive(c *gin.Context) {
	rows, err := lc.Repo.ListActiveLoans(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

type CheckoutReq struct {
	ItemKey string `json:"itemKey" binding:"required"`
	CardID  string `json:"cardId" binding:"required"`
}

// POST /api/loans
func (lc *LoanController) Checkout(c *gin.Context) {
	var req CheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := lc.Repo.Checkout(c.Request.Context(), req.ItemKey, req.CardID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"ok": true, "loan": res})
}

// POST /api/loans/:id/checkin
func (lc *LoanController) Checkin(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid loan id")
		return
	}
	res, err := lc.Repo.Checkin(c.Request.Context(), uint(id))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "loan": res})
}
