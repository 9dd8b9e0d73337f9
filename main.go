package main

import (
	"os"

	"budgetpilot/cmd"
)

// @title                       BudgetPilot API
// @version                     1.0
// @description                 Financial advisor chat service backed by a resilient generation client.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
