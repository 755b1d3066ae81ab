package routes

import (
	"net/http"

	"library_circulation/app"
	"library_circulation/controllers"
)

func RegisterRoutes(a *app.App) {
	r := a.Router

	// 控制器与依赖
	s := controllers.GetSrv(a)
	itemCtl := controllers.NewItemController(s)
	loanCtl := controllers.NewLoanController(s)
	borrowerCtl := controllers.NewBorrowerController(s)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	api := r.Group("/api", app.AccrueOnRequest(a.Repo, a.Accrual()))

	// ------------------------------
	// 目录
	// ------------------------------
	items := api.Group("/items")
	{
		items.GET("", itemCtl.Search)                 // ?q=
		items.GET("/available", itemCtl.ListAvailable) // ?q=
		items.POST("", itemCtl.CreateItem)
		items.GET("/:key/borrower", itemCtl.CurrentBorrower)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	loans := api.Group("/loans")
	{
		loans.GET("", loanCtl.ListActive) // ?q=
		loans.POST("", loanCtl.Checkout)
		loans.POST("/:id/checkin", loanCtl.Checkin)
	}

	// ------------------------------
	// 借阅者与罚款
	// ------------------------------
	borrowers := api.Group("/borrowers")
	{
		borrowers.POST("", borrowerCtl.Register)
		borrowers.GET("/:cardId", borrowerCtl.GetBorrower)
		borrowers.GET("/:cardId/fines", borrowerCtl.Fines) // ?includePaid=
		borrowers.POST("/:cardId/fines/settle", borrowerCtl.Settle)
	}
	api.POST("/fines/accrue", borrowerCtl.Accrue)
}
