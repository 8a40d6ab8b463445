package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dasmlab/glance/pkg/server"
)

var (
	serverAddr string
	timeout    time.Duration
	verbose    bool
)

var logger = logrus.New()

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "glancectl",
		Short:         "Drive a running glanced daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(logrus.InfoLevel)
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&serverAddr, "addr", "http://localhost:8790", "glanced HTTP bridge address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newSelectCmd(),
		newToggleCmd(),
		newReplaceCmd(),
		newStatusCmd(),
		newSettingsCmd(),
		newLanguagesCmd(),
		newWatchCmd(),
	)
	return root
}

func apiClient() *client {
	logger.WithField("server", serverAddr).Debug("Using glanced bridge")
	return newClient(serverAddr, timeout)
}

func newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <text>...",
		Short: "Send text as the current selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if err := apiClient().Select(cmd.Context(), text); err != nil {
				return err
			}
			logger.WithField("text_length", len(text)).Debug("Selection sent")
			return nil
		},
	}
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Switch the translator on or off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := apiClient().Toggle(cmd.Context())
			if err != nil {
				return err
			}
			state := "off"
			if enabled {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "translator %s\n", state)
			return nil
		},
	}
}

func newReplaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replace",
		Short: "Replace the selection with the displayed translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := apiClient().Replace(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the translator state and displayed translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := apiClient().Status(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "enabled: %t\n", st.Enabled)
			fmt.Fprintf(w, "visible: %t\n", st.Visible)
			fmt.Fprintf(w, "text:    %s\n", st.Text)
			return nil
		},
	}
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change translation settings",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the active settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := apiClient().Settings(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}

	set := &cobra.Command{
		Use:     "set key=value...",
		Short:   "Change settings (api, targetLanguage, detection, fromLanguage, endpoint, apiKey)",
		Example: "  glancectl settings set targetLanguage=fr detection=false",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update, err := parseSettingsArgs(args)
			if err != nil {
				return err
			}
			s, err := apiClient().UpdateSettings(cmd.Context(), update)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"api":             s.Provider,
				"target_language": s.TargetLanguage,
			}).Info("Settings updated")
			return printJSON(cmd.OutOrStdout(), s)
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the language codes the configured provider accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, languages, err := apiClient().Languages(cmd.Context())
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"api":   api,
				"count": len(languages),
			}).Debug("Listed supported languages")
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(languages, " "))
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print status, notices and replacements as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			return apiClient().Watch(ctx, func(ev server.Event) {
				fmt.Fprintln(w, formatEvent(ev))
			})
		},
	}
}

func formatEvent(ev server.Event) string {
	ts := ev.Timestamp.Local().Format("15:04:05")
	switch {
	case ev.Type == server.EventStatus && ev.Disposed:
		return fmt.Sprintf("%s status  (disposed)", ts)
	case ev.Type == server.EventStatus && !ev.Visible:
		return fmt.Sprintf("%s status  (hidden)", ts)
	default:
		return fmt.Sprintf("%s %-7s %s", ts, ev.Type, ev.Text)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

