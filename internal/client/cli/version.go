package cli

import "github.com/spf13/cobra"

func versionCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipApp: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			opts.IO.Printf("Build version: %s\n", valueOrNA(opts.Build.Version))
			opts.IO.Printf("Build date: %s\n", valueOrNA(opts.Build.BuildDate))
			opts.IO.Printf("Build commit: %s\n", valueOrNA(opts.Build.GitCommit))
		},
	}
}

func valueOrNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
