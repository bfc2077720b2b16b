// Command marqueed runs the marquee daemon without the CLI front end, for
// service managers that expect a dedicated binary.
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"marquee/internal/config"
	"marquee/internal/daemonrun"
)

const configEnvVar = "MARQUEE_CONFIG"

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, _, _, err := config.Load(configPath())
	if err != nil {
		return err
	}
	return daemonrun.Run(ctx, cfg, daemonrun.Options{})
}

func configPath() string {
	return strings.TrimSpace(os.Getenv(configEnvVar))
}
