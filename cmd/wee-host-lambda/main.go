package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-host-go/support"
)

func main() {
	cfg, err := support.Load(support.NewViper())
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	handler, cleanup, err := live(context.Background(), cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to configure handler")
		os.Exit(1)
	}
	defer cleanup()

	lambda.Start(handler)
}
