package main

import (
	"library_circulation/app"
	"library_circulation/config"
	"library_circulation/routes"
)

func main() {
	config.LoadEnv()
	application := app.MustNew()
	defer application.Close()

	routes.RegisterRoutes(application)

	application.Log.Info("listening", "port", application.Config.Port)
	if err := application.Router.Run(":" + application.Config.Port); err != nil {
		application.Log.Error("server stopped", "error", err)
	}
}
