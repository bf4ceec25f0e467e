package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mchmarny/namedist/pkg/net"
	urfave "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const fetchConcurrency = 4

func newFetchCmd() *urfave.Command {
	return &urfave.Command{
		Name:   "fetch",
		Usage:  "Download the source tables listed under sources in the config",
		Action: cmdFetch,
	}
}

type fetched struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Path string `json:"path" yaml:"path"`
	Size string `json:"size" yaml:"size"`
}

func cmdFetch(ctx context.Context, cmd *urfave.Command) error {
	conf := getConfig(cmd).Config
	if len(conf.Sources) == 0 {
		return errors.New("no sources configured")
	}

	names := make([]string, 0, len(conf.Sources))
	for n := range conf.Sources {
		names = append(names, n)
	}
	sort.Strings(names)

	list := make([]*fetched, len(names))
	client := net.GetHTTPClient()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, n := range names {
		g.Go(func() error {
			f := &fetched{Name: n, URL: conf.Sources[n], Path: conf.SourcePath(n)}
			size, err := net.Download(ctx, client, f.URL, f.Path)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", n, err)
			}
			f.Size = humanize.Bytes(uint64(size))
			slog.Info("source fetched", "name", n, "size", f.Size)
			list[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return encode(cmd, list)
}
