package main

import "github.com/bcr/rental-system/cmd"

// @title                      BCR Car Rental API
// @version                    1.0
// @description                Car rental backend: authentication, fleet management and conflict-free rentals.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cmd.Execute()
}
