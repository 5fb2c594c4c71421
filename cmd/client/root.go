package main

import (
	"fmt"
	"io"

	"github.com/MKhiriev/navdash/internal/client"
	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/models"
	"github.com/spf13/cobra"
)

// skipAppAnnotation marks commands that run without opening the local store.
const skipAppAnnotation = "navdash/skip-app"

// cli carries the state shared by every command of one invocation.
type cli struct {
	buildInfo  models.AppBuildInfo
	configPath string

	app       *client.App
	logCloser io.Closer
}

// newRootCmd builds the command tree. The returned func closes whatever the
// invocation opened; cobra skips post-run hooks when a command fails.
func newRootCmd(buildInfo models.AppBuildInfo) (*cobra.Command, func() error) {
	c := &cli{buildInfo: buildInfo}

	root := &cobra.Command{
		Use:   "navdash",
		Short: "Bookmark dashboard client with offline-first sync",
		Long: `navdash keeps the dashboard slices (links, background, preferences) in a
local store and synchronizes them with the gateway.

Edits are committed locally first and pushed in the background. Run
"navdash login" once per device, then use "navdash run" for the live view
or the one-shot commands below.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.open,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.close()
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "JSON config file path")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newPasswdCmd(c),
		newSyncCmd(c),
		newStatusCmd(c),
		newShowCmd(c),
		newEditCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newRunCmd(c),
		newVersionCmd(c),
	)

	return root, c.close
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipAppAnnotation] != "" {
		return nil
	}

	cfg, err := config.GetClientConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Adapter.UserAgent = c.buildInfo.UserAgent()

	log, closer := logger.NewClientLogger("navdash-client", cfg.LogFile)
	c.logCloser = closer

	app, err := client.NewApp(cmd.Context(), cfg, log)
	if err != nil {
		c.close()
		return err
	}
	c.app = app
	return nil
}

func (c *cli) close() error {
	var err error
	if c.app != nil {
		err = c.app.Close()
		c.app = nil
	}
	if c.logCloser != nil {
		c.logCloser.Close()
		c.logCloser = nil
	}
	return err
}
