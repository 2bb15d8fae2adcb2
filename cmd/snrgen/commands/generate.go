package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shieldml/snrgen/pkg/cli"
	"github.com/shieldml/snrgen/pkg/dataset"
	"github.com/shieldml/snrgen/pkg/detector"
	"github.com/shieldml/snrgen/pkg/waveform"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draw injection parameters and build the dataset record",
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
		psd, err := loadPSD(ctx, arch, p)
		if err != nil {
			return err
		}
		cat, err := loadBank(ctx, arch, p)
		if err != nil {
			return err
		}
		_, times, err := noiseSource(ctx, arch, p, psd)
		if err != nil {
			return err
		}

		gen, err := dataset.NewGenerator(runMeta(p), cat, waveform.NewNewtonian(), detector.NewNetwork(), psd)
		if err != nil {
			return err
		}
		set, err := gen.Generate(dataset.GenerateConfig{
			Injections:         p.Generate.Injections,
			NoiseSamples:       p.Generate.NoiseSamples,
			DetectorThreshold:  p.Generate.DetectorThreshold,
			NetworkThreshold:   p.Generate.NetworkThreshold,
			TemplatesPerSample: p.Generate.TemplatesPerSample,
			SelectionWidth:     p.Generate.SelectionWidth,
		}, dataset.UniformPrior{
			Mass1Min: p.Prior.Mass1Min, Mass1Max: p.Prior.Mass1Max,
			Mass2Min: p.Prior.Mass2Min, Mass2Max: p.Prior.Mass2Max,
			SpinMin: p.Prior.SpinMin, SpinMax: p.Prior.SpinMax,
			DistanceMin: p.Prior.DistanceMin, DistanceMax: p.Prior.DistanceMax,
		}, times)
		if err != nil {
			return err
		}
		if err := set.Save(ctx, arch, p.RunDir); err != nil {
			return err
		}

		fmt.Println(cli.Summary{
			Title: "dataset generated",
			Rows: []cli.KV{
				{Key: "run", Value: set.Meta.ID},
				{Key: "injections", Value: fmt.Sprint(p.Generate.Injections)},
				{Key: "noise samples", Value: fmt.Sprint(p.Generate.NoiseSamples)},
				{Key: "templates/sample", Value: fmt.Sprint(p.Generate.TemplatesPerSample)},
				{Key: "store rows", Value: fmt.Sprint(p.Rows())},
				{Key: "written to", Value: p.RunDir},
			},
		}.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
