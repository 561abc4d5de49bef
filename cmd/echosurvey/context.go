package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"echosurvey/internal/config"
	"echosurvey/internal/survey"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// surveyLayout resolves <basedir>/<cruise>.
func (c *commandContext) surveyLayout(basedir, cruise string) (survey.Layout, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return survey.Layout{}, err
	}
	cruise = strings.TrimSpace(cruise)
	if cruise == "" || strings.ContainsAny(cruise, `/\`) {
		return survey.Layout{}, fmt.Errorf("invalid cruise name %q", cruise)
	}
	base, err := config.ExpandPath(strings.TrimSpace(basedir))
	if err != nil {
		return survey.Layout{}, fmt.Errorf("resolve base directory: %w", err)
	}
	return survey.NewLayout(cfg, base, cruise), nil
}

// openLayout resolves an existing survey directory.
func (c *commandContext) openLayout(surveyDir string) (survey.Layout, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return survey.Layout{}, err
	}
	root, err := config.ExpandPath(strings.TrimSpace(surveyDir))
	if err != nil {
		return survey.Layout{}, fmt.Errorf("resolve survey directory: %w", err)
	}
	if root == "" {
		return survey.Layout{}, fmt.Errorf("survey directory required")
	}
	return survey.OpenLayout(cfg, root), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
