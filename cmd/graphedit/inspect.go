package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	var showNodes bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarise a saved graph",
		Long: "Print node and edge counts, the nodes in ID order and how the graph\n" +
			"splits into connected components.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := headlessLogger(cfg)

			s, rec, dropped, err := openGraph(cmd.Context(), newArchive(cfg), args[0], logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n\n", brand.Sprint("inspect"), subtle.Sprint(rec.Location))
			fmt.Fprintf(out, "  Size:     %d bytes\n", rec.Bytes)
			fmt.Fprintf(out, "  Nodes:    %d\n", s.NodeCount())
			fmt.Fprintf(out, "  Edges:    %d\n", s.EdgeCount())
			fmt.Fprintf(out, "  Counter:  %d\n", s.Counter())
			if dropped > 0 {
				warn.Fprintf(out, "  Dropped:  %d dangling edges\n", dropped)
			}

			if showNodes && s.NodeCount() > 0 {
				fmt.Fprintln(out)
				rows := make([][]string, 0, s.NodeCount())
				for id := range s.IDs() {
					h, _ := s.Lookup(id)
					n, _ := s.Node(h)
					degree := 0
					for range s.Neighbors(h) {
						degree++
					}
					rows = append(rows, []string{
						n.ID,
						n.Name,
						strconv.FormatFloat(n.X, 'f', 1, 64),
						strconv.FormatFloat(n.Y, 'f', 1, 64),
						strconv.Itoa(degree),
					})
				}
				printTable(out, []string{"ID", "NAME", "X", "Y", "DEGREE"}, rows)
			}

			comps := components(s)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Components:  %d\n", len(comps))
			var isolated []string
			for _, c := range comps {
				if len(c) == 1 {
					isolated = append(isolated, c[0].ID)
				}
			}
			if len(isolated) > 0 {
				warn.Fprintf(out, "  Isolated:    %s\n", strings.Join(isolated, ", "))
			} else if len(comps) == 1 {
				good.Fprintln(out, "  Every node is reachable from every other")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showNodes, "nodes", true, "List nodes in ID order")
	return cmd
}
