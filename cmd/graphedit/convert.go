package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphedit/pkg/logging"
)

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Copy a saved graph between locations and encodings",
		Long: "Read a graph and write it back out. The destination suffix picks the\n" +
			"encoding: .json for plain JSON, .json.sz for snappy. Either side may be\n" +
			"an s3://bucket/key location.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := headlessLogger(cfg)
			arch := newArchive(cfg)

			doc, in, err := arch.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := arch.Save(cmd.Context(), args[1], doc)
			if err != nil {
				return err
			}
			logger.Info("graph converted",
				logging.String("from", in.Location),
				logging.String("to", out.Location),
				logging.Count(len(doc.Nodes)))

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s -> %s\n", good.Sprint("converted"), in.Location, out.Location)
			fmt.Fprintf(w, "  %d nodes, %d edges, %d -> %d bytes\n", len(doc.Nodes), len(doc.Edges), in.Bytes, out.Bytes)
			return nil
		},
	}
}
