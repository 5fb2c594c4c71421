package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MKhiriev/navdash/internal/service"
	"github.com/MKhiriev/navdash/internal/tui"
	"github.com/MKhiriev/navdash/models"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

func newLoginCmd(c *cli) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with the auth code",
		Long: `Exchanges the auth code for a session. The code is prompted with masked
input unless --code is given. Pending local edits are pushed right after a
successful login.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code == "" {
				var err error
				if code, err = c.app.TUI().PromptCode("LOGIN"); err != nil {
					return err
				}
			}

			if err := c.app.Services().Session.Login(cmd.Context(), code); err != nil {
				return errors.New(tui.HumanizeError(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "auth code (skips the prompt)")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the local session is cleared even when the gateway is unreachable
			if err := c.app.Services().Session.Logout(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", tui.HumanizeError(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newPasswdCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the auth code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := c.app.TUI().PromptCode("CURRENT CODE")
			if err != nil {
				return err
			}
			next, err := c.app.TUI().PromptCode("NEW CODE")
			if err != nil {
				return err
			}
			repeat, err := c.app.TUI().PromptCode("REPEAT NEW CODE")
			if err != nil {
				return err
			}
			if next != repeat {
				return errors.New("the new codes do not match")
			}

			if err = c.app.Services().Session.UpdateCredential(cmd.Context(), current, next); err != nil {
				return errors.New(tui.HumanizeError(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Auth code changed.")
			return nil
		},
	}
}

func newSyncCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull from the gateway and push pending edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncErr := c.app.Services().SyncCoordinator.Resync(cmd.Context())

			status, err := tui.LoadStatus(cmd.Context(), c.app.Services())
			if err != nil {
				return err
			}
			if syncErr != nil {
				status.Notice = tui.HumanizeError(syncErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderStatus(status))
			return nil
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and the sync state of every slice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := tui.LoadStatus(cmd.Context(), c.app.Services())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderStatus(status))
			return nil
		},
	}
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "show <slice>",
		Short:     "Print the local data of a slice",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sliceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			slice, err := models.ParseSlice(args[0])
			if err != nil {
				return err
			}

			snap, err := c.app.Services().Cache.Read(cmd.Context(), slice)
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), snap.Data)
		},
	}
}

func newEditCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <slice> <file>",
		Short: "Replace a slice with the JSON in file (\"-\" reads stdin)",
		Long: `Saves the JSON document as the new value of the slice. The value is
committed locally first and then pushed; when the push fails the edit stays
pending and is retried by the next sync.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: sliceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			slice, err := models.ParseSlice(args[0])
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}

			coordinator := c.app.Services().SyncCoordinator
			if _, err = coordinator.Save(cmd.Context(), slice, data); err != nil {
				return err
			}
			return reportFlush(cmd, coordinator)
		},
	}
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		out         string
		toClipboard bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a versioned backup of every slice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backup, err := c.app.Services().SyncCoordinator.Export(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(backup, "", "  ")
			if err != nil {
				return fmt.Errorf("encode backup: %w", err)
			}

			switch {
			case toClipboard:
				if err = clipboard.WriteAll(string(raw)); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Backup copied to the clipboard.")
			case out != "":
				if err = os.WriteFile(out, raw, 0o600); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s.\n", out)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy the backup to the clipboard")
	cmd.MarkFlagsMutuallyExclusive("out", "clipboard")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var fromClipboard bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Restore every slice from a backup",
		Long: `Validates the backup and saves each of its slices as a local edit, so the
restored values are pushed like any other change. Reads the file argument,
stdin for "-", or the clipboard with --clipboard.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			switch {
			case fromClipboard:
				var text string
				if text, err = clipboard.ReadAll(); err != nil {
					return fmt.Errorf("read clipboard: %w", err)
				}
				raw = []byte(text)
			case len(args) == 1:
				if raw, err = readInput(cmd, args[0]); err != nil {
					return err
				}
			default:
				return errors.New("a backup file or --clipboard is required")
			}

			var backup models.Backup
			if err = json.Unmarshal(raw, &backup); err != nil {
				return fmt.Errorf("decode backup: %w", err)
			}

			coordinator := c.app.Services().SyncCoordinator
			if err = coordinator.Import(cmd.Context(), backup); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d slices.\n", len(backup.Slices))
			return reportFlush(cmd, coordinator)
		},
	}
	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "read the backup from the clipboard")
	return cmd
}

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the live dashboard with background sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Run(cmd.Context())
		},
	}
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipAppAnnotation: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderBuildInfo(c.buildInfo))
		},
	}
}

func sliceNames() []string {
	names := make([]string, 0, len(models.AllSlices()))
	for _, s := range models.AllSlices() {
		names = append(names, s.String())
	}
	return names
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

func writeIndented(w io.Writer, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode slice data: %w", err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// reportFlush pushes pending edits and prints the outcome. A failed push is
// not a command failure: the edit is committed locally and stays pending.
func reportFlush(cmd *cobra.Command, coordinator service.SyncCoordinator) error {
	if err := coordinator.Flush(cmd.Context()); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Saved locally; push pending:", tui.HumanizeError(err))
		return nil
	}

	pending, err := coordinator.Pending(cmd.Context())
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Saved locally; push pending: not logged in")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved and pushed.")
	return nil
}
