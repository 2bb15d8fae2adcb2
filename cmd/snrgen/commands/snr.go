package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shieldml/snrgen/pkg/cli"
	"github.com/shieldml/snrgen/pkg/dataset"
	"github.com/shieldml/snrgen/pkg/detector"
	"github.com/shieldml/snrgen/pkg/snr"
	"github.com/shieldml/snrgen/pkg/store"
	"github.com/shieldml/snrgen/pkg/waveform"
)

var (
	jobIndex  int
	totalJobs int
)

var snrCmd = &cobra.Command{
	Use:   "snr",
	Short: "Run the matched-filter engine over this job's sample shard",
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
		set, err := dataset.Load(ctx, arch, p.RunDir)
		if err != nil {
			return err
		}
		ns, _, err := noiseSource(ctx, arch, p, psd)
		if err != nil {
			return err
		}

		rows := len(set.Samples) * set.Meta.TemplatesPerSample
		st, err := openOrCreateStore(p.Store, len(p.Detectors), rows, p.WindowLen())
		if err != nil {
			return err
		}
		defer st.Close()

		var cache snr.Cache
		if p.Engine.CacheDir != "" {
			bc, err := snr.OpenBadgerCache(p.Engine.CacheDir)
			if err != nil {
				return err
			}
			defer bc.Close()
			cache = bc
		} else {
			cache = snr.NewMemoryCache()
		}

		eng, err := snr.NewEngine(snr.Config{
			Detectors:          p.Detectors,
			SampleRate:         p.SampleRate,
			SegmentLen:         p.SegmentLen(),
			FLow:               p.FLow,
			FHigh:              p.FHigh,
			TemplatesPerSample: set.Meta.TemplatesPerSample,
			Window:             snr.Window{Before: p.Window.Before, After: p.Window.After, Offset: p.Window.Offset},
			Workers:            p.Engine.Workers,
			BatchSize:          p.Engine.BatchSize,
			SuperBatch:         p.Engine.SuperBatch,
		}, waveform.NewNewtonian(), cache, psd, st)
		if err != nil {
			return err
		}

		part, err := store.JobPartition(len(set.Samples), jobIndex, totalJobs)
		if err != nil {
			return err
		}
		src := dataset.NewSynthSource(set, cat, waveform.NewNewtonian(), detector.NewNetwork(), ns, p.Offset)

		began := time.Now()
		if err := eng.Run(ctx, src, part); err != nil {
			return err
		}
		if err := st.Flush(); err != nil {
			return err
		}

		fi, _ := os.Stat(p.Store)
		var size int64
		if fi != nil {
			size = fi.Size()
		}
		fmt.Println(cli.Summary{
			Title: "snr shard complete",
			Rows: []cli.KV{
				{Key: "job", Value: fmt.Sprintf("%d of %d", jobIndex, totalJobs)},
				{Key: "samples", Value: fmt.Sprintf("[%d, %d)", part.Start, part.End)},
				{Key: "rows", Value: fmt.Sprintf("[%d, %d)", part.Start*set.Meta.TemplatesPerSample, part.End*set.Meta.TemplatesPerSample)},
				{Key: "store", Value: p.Store},
				{Key: "size", Value: cli.FormatBytes(size)},
				{Key: "elapsed", Value: cli.FormatDuration(time.Since(began))},
			},
		}.Render())
		return nil
	},
}

// openOrCreateStore attaches to the shared output array, preallocating
// it if this job is the first to touch it.
func openOrCreateStore(path string, detectors, rows, width int) (*store.Store, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store.Create(path, detectors, rows, width)
	}
	if err != nil {
		return nil, err
	}
	return store.Open(path, detectors, rows, width)
}

func init() {
	snrCmd.Flags().IntVar(&jobIndex, "index", 0, "this job's index in the array")
	snrCmd.Flags().IntVar(&totalJobs, "total-jobs", 1, "number of jobs in the array")
	rootCmd.AddCommand(snrCmd)
}
