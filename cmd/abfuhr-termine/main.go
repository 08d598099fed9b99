package main

import (
	// day boundaries need Europe/Berlin even on hosts without a zone database
	_ "time/tzdata"

	"github.com/klabast/wb-services/abfuhr-termine/internal/commands"
)

func main() {
	commands.Execute()
}
