package main

import (
	log "github.com/sirupsen/logrus"

	"pulasa-client/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.WithError(err).Fatal("startup failed")
	}
}
