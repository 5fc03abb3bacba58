package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	corecfg "github.com/aevon-lab/project-indica/internal/core/config"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and indicator definitions, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := corecfg.Load(configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d indicator definition(s) in %s\n", len(cfg.Loaded.Types), cfg.Loaded.ConfigDir)
			for i, t := range cfg.Loaded.Types {
				slugs := make([]string, 0, len(t.Calculators()))
				for _, c := range t.Calculators() {
					slugs = append(slugs, c.Slug())
				}
				fmt.Fprintf(out, "  %s source=%s database=%s group_by=[%s] calculators=[%s] sha256=%.12s\n",
					t.Name(),
					t.SourceType(),
					t.Database(),
					strings.Join(t.GroupNames(), ","),
					strings.Join(slugs, ","),
					cfg.Loaded.Definitions[i].Fingerprint,
				)
			}
			return nil
		},
	}
}
