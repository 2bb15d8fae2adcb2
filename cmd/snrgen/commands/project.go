package commands

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shieldml/snrgen/cmd/snrgen/internal/config"
	"github.com/shieldml/snrgen/pkg/bank"
	"github.com/shieldml/snrgen/pkg/dataset"
	"github.com/shieldml/snrgen/pkg/noise"
	"github.com/shieldml/snrgen/pkg/storage"
)

func loadProject() (*config.Project, error) {
	return config.Load(projectPath)
}

// openArchive builds the storage backend named by the project.
func openArchive(p *config.Project) (storage.Archive, error) {
	switch p.Storage.Backend {
	case "local":
		return storage.NewLocal(p.Storage.Root)
	case "s3":
		opts := s3.Options{Region: p.Storage.Region}
		if p.Storage.Endpoint != "" {
			opts.BaseEndpoint = aws.String(p.Storage.Endpoint)
		}
		if p.Storage.AccessKey != "" {
			key, secret := p.Storage.AccessKey, p.Storage.SecretKey
			opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: key, SecretAccessKey: secret}, nil
			})
		} else {
			opts.Credentials = aws.AnonymousCredentials{}
		}
		return storage.NewS3(s3.New(opts), p.Storage.Bucket, p.Storage.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", p.Storage.Backend)
	}
}

func loadPSD(ctx context.Context, arch storage.Archive, p *config.Project) (*noise.PSD, error) {
	rc, err := arch.Open(ctx, p.PSDPath)
	if err != nil {
		return nil, fmt.Errorf("open psd: %w", err)
	}
	defer rc.Close()
	return noise.ReadPSD(rc)
}

func loadBank(ctx context.Context, arch storage.Archive, p *config.Project) (*bank.Catalog, error) {
	rc, err := arch.Open(ctx, p.Bank.Path)
	if err != nil {
		return nil, fmt.Errorf("open bank: %w", err)
	}
	defer rc.Close()
	return bank.LoadCatalog(rc, &bank.LoadOptions{
		Mass1Min:  p.Bank.Mass1Min,
		Mass1Max:  p.Bank.Mass1Max,
		Mass2Min:  p.Bank.Mass2Min,
		Mass2Max:  p.Bank.Mass2Max,
		QMin:      p.Bank.QMin,
		QMax:      p.Bank.QMax,
		SpinScale: p.Bank.SpinScale,
	})
}

// noiseSource returns the run's noise provider and the GPS times
// injections may be placed at.
func noiseSource(ctx context.Context, arch storage.Archive, p *config.Project, psd *noise.PSD) (dataset.NoiseSource, []int64, error) {
	if p.NoiseDir != "" {
		segs, err := noise.OpenSegments(ctx, arch, p.NoiseDir)
		if err != nil {
			return nil, nil, err
		}
		if segs.SampleRate() != p.SampleRate {
			return nil, nil, fmt.Errorf("noise archive is %d Hz, project wants %d Hz", segs.SampleRate(), p.SampleRate)
		}
		times := segs.ValidTimes(int64(p.SegmentSeconds))
		if len(times) == 0 {
			return nil, nil, fmt.Errorf("no noise segment is %d s long", p.SegmentSeconds)
		}
		return dataset.SegmentNoise{Segments: segs}, times, nil
	}

	// Gaussian runs have no recorded segments; any epoch works, the
	// range just has to be wide enough to decorrelate the noise draws.
	times := make([]int64, 4096)
	for i := range times {
		times[i] = p.GPSStart + int64(i)
	}
	ns := dataset.GaussianNoise{
		PSD:        psd,
		Detectors:  p.Detectors,
		SampleRate: p.SampleRate,
		Seed:       p.Generate.Seed,
	}
	return ns, times, nil
}

func runMeta(p *config.Project) dataset.Meta {
	return dataset.Meta{
		Detectors:          p.Detectors,
		SampleRate:         p.SampleRate,
		SegmentLen:         p.SegmentLen(),
		FLow:               p.FLow,
		TemplatesPerSample: p.Generate.TemplatesPerSample,
		Seed:               p.Generate.Seed,
	}
}
