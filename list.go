package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dicabi/inmobiliaria/entity"
	"github.com/dicabi/inmobiliaria/screen"
)

func municipalitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "municipios",
		Short: "Print the municipalities a branch may belong to",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, m := range entity.Municipalities {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
		},
	}
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list <resource>",
		Short:     "List a resource from a running server",
		Long:      "List a resource from a running server. Resources: " + strings.Join(screen.Names(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: screen.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := screen.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown resource %q (one of: %s)", args[0], strings.Join(screen.Names(), ", "))
			}
			baseURL, _ := cmd.Flags().GetString("url")
			token, _ := cmd.Flags().GetString("token")
			search, _ := cmd.Flags().GetString("search")

			s := screen.New(screen.NewClient(baseURL, token), cfg)
			if err := s.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", s.Err, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			header := append([]string{"ID"}, cfg.Columns...)
			if cfg.StatusField != "" {
				header = append(header, "COLOR")
			}
			fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
			for _, it := range s.Filter(search) {
				row := append([]string{it.ID()}, s.Row(it)...)
				if cfg.StatusField != "" {
					row = append(row, screen.StatusColor(it.Text(cfg.StatusField)))
				}
				fmt.Fprintln(tw, strings.Join(row, "\t"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().String("url", envOr("INMOBILIARIA_URL", "http://localhost:5000"), "Base URL of the API")
	cmd.Flags().String("token", os.Getenv("INMOBILIARIA_TOKEN"), "Bearer token sent with every request")
	cmd.Flags().String("search", "", "Only show rows containing this text")

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
