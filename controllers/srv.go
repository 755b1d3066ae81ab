// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"

	"library_circulation/app"
	"library_circulation/db"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Repo *db.Repo
}

func GetSrv(a *app.App) *Srv { return &Srv{Repo: a.Repo} }

// --- helpers ---

func statusOf(kind db.Kind) int {
	switch kind {
	case db.KindValidation:
		return http.StatusBadRequest
	case db.KindPolicy, db.KindIntegrity:
		return http.StatusConflict
	case db.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

// fail writes an engine failure as {"ok": false, "kind", "error"}.
// Store failures keep their cause out of the response.
func fail(c *gin.Context, err error) {
	kind := db.KindOf(err)
	msg := err.Error()
	var f *db.Failure
	if errors.As(err, &f) {
		msg = f.Message
	}
	if kind == db.KindStoreUnavailable {
		app.Logger(c).Error("store failure", "error", err)
	}
	c.JSON(statusOf(kind), app.H{"ok": false, "kind": kind.String(), "error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, app.H{"ok": false, "kind": db.KindValidation.String(), "error": msg})
}
