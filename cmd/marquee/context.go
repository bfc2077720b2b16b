package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"marquee/internal/apiclient"
	"marquee/internal/config"
)

const tokenEnvVar = "MARQUEE_TOKEN"

var errTokenRequired = errors.New("admin token required: run `marquee login` and pass --token or set " + tokenEnvVar)

type commandContext struct {
	apiFlag    *string
	configFlag *string
	tokenFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag, tokenFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
		tokenFlag:  tokenFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiBind prefers --api and falls back to the configured bind address, so
// remote commands work on machines without a full configuration.
func (c *commandContext) apiBind() (string, error) {
	if c.apiFlag != nil {
		if bind := strings.TrimSpace(*c.apiFlag); bind != "" {
			return bind, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", fmt.Errorf("resolve api address (pass --api to skip config): %w", err)
	}
	return cfg.Paths.APIBind, nil
}

func (c *commandContext) token() string {
	if c.tokenFlag != nil {
		if token := strings.TrimSpace(*c.tokenFlag); token != "" {
			return token
		}
	}
	return strings.TrimSpace(os.Getenv(tokenEnvVar))
}

func (c *commandContext) publicClient() (*apiclient.Client, error) {
	bind, err := c.apiBind()
	if err != nil {
		return nil, err
	}
	return apiclient.New(bind)
}

func (c *commandContext) adminClient() (*apiclient.Client, error) {
	token := c.token()
	if token == "" {
		return nil, errTokenRequired
	}
	bind, err := c.apiBind()
	if err != nil {
		return nil, err
	}
	return apiclient.New(bind, apiclient.WithToken(token))
}

func (c *commandContext) wrapAPIError(client *apiclient.Client, err error) error {
	switch {
	case err == nil:
		return nil
	case apiclient.IsUnavailable(err):
		return fmt.Errorf("connect to daemon at %s: not reachable; start it with `marquee serve`", client.BaseURL())
	case apiclient.IsUnauthorized(err):
		return fmt.Errorf("daemon rejected the admin token; run `marquee login` again: %w", err)
	default:
		return err
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

var remoteAnnotations = map[string]string{"skipConfigLoad": "true"}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
