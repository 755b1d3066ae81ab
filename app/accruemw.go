// app/accruemw.go
package app

import (
	"library_circulation/db"
	"library_circulation/throttle"

	"github.com/gin-gonic/gin"
)

const accrualMarker = "fines:accrued"

// AccrueOnRequest runs fine accrual for the first request of every throttle
// window. Errors are logged and never block the request.
func AccrueOnRequest(repo *db.Repo, marker *throttle.Marker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := marker.Acquire(c.Request.Context(), accrualMarker)
		if err != nil {
			Logger(c).Warn("accrual throttle", "error", err)
		}
		if ok {
			if n, err := repo.AccrueFines(c.Request.Context()); err != nil {
				Logger(c).Warn("accrual failed", "error", err)
				// 下个请求重试
				if err := marker.Reset(c.Request.Context(), accrualMarker); err != nil {
					Logger(c).Warn("accrual throttle reset", "error", err)
				}
			} else {
				Logger(c).Info("accrual on request", "written", n)
			}
		}
		c.Next()
	}
}
