package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show petscan build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if err := validateFormat(format); err != nil {
				return err
			}

			payload := versionPayload{
				Tool:      "petscan",
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
			}
			if format == "json" {
				return renderJSON(cmd.OutOrStdout(), payload)
			}
			renderVersionPretty(cmd.OutOrStdout(), payload)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func renderVersionPretty(w io.Writer, payload versionPayload) {
	headingColor.Fprint(w, payload.Tool)
	fmt.Fprintf(w, " %s\n", payload.Version)
	if payload.GitCommit != "" {
		mutedColor.Fprintf(w, "  commit %s\n", payload.GitCommit)
	}
	if payload.BuildDate != "" {
		mutedColor.Fprintf(w, "  built  %s\n", payload.BuildDate)
	}
}
