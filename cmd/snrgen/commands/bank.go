package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shieldml/snrgen/pkg/cli"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Template bank inspection",
}

var bankInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show template bank statistics",
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
		cat, err := loadBank(ctx, arch, p)
		if err != nil {
			return err
		}

		m1Min, m1Max := cat.At(0).Mass1, cat.At(0).Mass1
		m2Min, m2Max := cat.At(0).Mass2, cat.At(0).Mass2
		for i := 1; i < cat.Len(); i++ {
			t := cat.At(i)
			m1Min, m1Max = min(m1Min, t.Mass1), max(m1Max, t.Mass1)
			m2Min, m2Max = min(m2Min, t.Mass2), max(m2Max, t.Mass2)
		}

		fmt.Println(cli.Summary{
			Title: "template bank",
			Rows: []cli.KV{
				{Key: "path", Value: p.Bank.Path},
				{Key: "templates", Value: fmt.Sprint(cat.Len())},
				{Key: "chirp mass", Value: fmt.Sprintf("%.4f to %.4f", cat.At(0).ChirpMass, cat.At(cat.Len()-1).ChirpMass)},
				{Key: "mass1", Value: fmt.Sprintf("%.3f to %.3f", m1Min, m1Max)},
				{Key: "mass2", Value: fmt.Sprintf("%.3f to %.3f", m2Min, m2Max)},
			},
		}.Render())
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankInfoCmd)
	rootCmd.AddCommand(bankCmd)
}
