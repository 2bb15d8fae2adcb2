package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shieldml/snrgen/pkg/cli"
	"github.com/shieldml/snrgen/pkg/dataset"
	"github.com/shieldml/snrgen/pkg/store"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Write the array header once every job has finished",
	Long: `Write the deferred numpy header into the output array.

Run this exactly once, after all snr jobs of the array have completed.
The tool cannot tell whether jobs are still running; scheduling the
finalize step after the array is the operator's responsibility.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := loadProject()
		if err != nil {
			return err
		}
		arch, err := openArchive(p)
		if err != nil {
			return err
		}
		set, err := dataset.Load(ctx, arch, p.RunDir)
		if err != nil {
			return err
		}

		rows := len(set.Samples) * set.Meta.TemplatesPerSample
		st, err := store.Open(p.Store, len(p.Detectors), rows, p.WindowLen())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Finalize(); err != nil {
			return err
		}

		fmt.Println(cli.Summary{
			Title: "store finalized",
			Rows: []cli.KV{
				{Key: "store", Value: p.Store},
				{Key: "shape", Value: fmt.Sprintf("(%d, %d, %d)", len(p.Detectors), rows, p.WindowLen())},
				{Key: "dtype", Value: "complex64"},
			},
		}.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(finalizeCmd)
}
