package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphedit/pkg/pathfind"
)

func pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <file> <from> <to>",
		Short: "Print the shortest path between two nodes",
		Long: "Print the cheapest route between two nodes of a saved graph.\n" +
			subtle.Sprint("Nodes may be named by ID (N3) or by display name"),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := headlessLogger(cfg)

			s, rec, _, err := openGraph(cmd.Context(), newArchive(cfg), args[0], logger)
			if err != nil {
				return err
			}
			from, err := resolveNode(s, args[1])
			if err != nil {
				return err
			}
			to, err := resolveNode(s, args[2])
			if err != nil {
				return err
			}

			res, err := pathfind.FindContext(cmd.Context(), s.Snapshot(), from.Handle, to.Handle)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n\n", brand.Sprint("path"), subtle.Sprint(rec.Location))
			if !res.Found() {
				warn.Fprintf(out, "  no path from %s to %s\n", from.ID, to.ID)
				return nil
			}

			hops := make([]string, 0, len(res.Path))
			for _, h := range res.Path {
				n, _ := s.Node(h)
				hops = append(hops, labelFor(n.ID, n.Name))
			}
			fmt.Fprintf(out, "  %s\n\n", strings.Join(hops, info.Sprint(" -> ")))
			fmt.Fprintf(out, "  Hops:  %d\n", len(res.Path)-1)
			fmt.Fprintf(out, "  Cost:  %s\n", good.Sprintf("%.3f", res.Cost))
			return nil
		},
	}
}

// labelFor shows the name next to the ID when they differ.
func labelFor(id, name string) string {
	if name == "" || name == id {
		return id
	}
	return fmt.Sprintf("%s (%s)", id, name)
}
