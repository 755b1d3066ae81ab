package controllers

import (
	"net/http"
	"strconv"

	"library_circulation/app"
	"library_circulation/db"

	"github.com/gin-gonic/gin"
)

type BorrowerController struct{ *Srv }

func NewBorrowerController(s *Srv) *BorrowerController { return &BorrowerController{Srv: s} }

// POST /api/borrowers
func (bc *BorrowerController) Register(c *gin.Context) {
	var in struct {
		Name    string `json:"name"`
		GovID   string `json:"govId"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	b, err := bc.Repo.Register(c.Request.Context(), db.RegisterInput{
		Name: in.Name, GovID: in.GovID, Address: in.Address, Phone: in.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"ok": true, "cardId": b.CardID, "borrower": b})
}

// GET /api/borrowers/:cardId
func (bc *BorrowerController) GetBorrower(c *gin.Context) {
	b, err := bc.Repo.FindBorrower(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"borrower": b})
}

// GET /api/borrowers/:cardId/fines?includePaid=true
func (bc *BorrowerController) Fines(c *gin.Context) {
	includePaid, _ := strconv.ParseBool(c.DefaultQuery("includePaid", "false"))
	sum, err := bc.Repo.FineSummary(c.Request.Context(), c.Param("cardId"), includePaid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// POST /api/borrowers/:cardId/fines/settle
func (bc *BorrowerController) Settle(c *gin.Context) {
	n, err := bc.Repo.Settle(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "settled": n})
}

// POST /api/fines/accrue
func (bc *BorrowerController) Accrue(c *gin.Context) {
	n, err := bc.Repo.AccrueFines(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "written": n})
}
