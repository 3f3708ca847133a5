// Package transfer moves a resolved episode file into the download directory.
package transfer

import (
	"context"
	"fmt"

	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/key"
	"github.com/epget-cli/epget/network"
	"github.com/epget-cli/epget/progress"
	"github.com/spf13/viper"
)

// Transfer completes a descriptor into targetDir, reporting progress to sink.
// The final file name must only appear once its content is complete.
type Transfer interface {
	Execute(ctx context.Context, d episode.Descriptor, targetDir string, sink progress.Sink) error
}

// Strategies dispatches a descriptor to the transfer of its kind.
type Strategies struct {
	Pull Transfer
	Push Transfer
}

// FromConfig returns the configured strategies.
func FromConfig() Strategies {
	return Strategies{
		Pull: &Pull{
			Client:    network.Client,
			ChunkSize: viper.GetInt(key.TransferChunkSize),
		},
		Push: &Push{
			Interval: viper.GetDuration(key.TransferLockInterval),
		},
	}
}

func (s Strategies) Execute(ctx context.Context, d episode.Descriptor, targetDir string, sink progress.Sink) error {
	var t Transfer
	switch d.Kind {
	case episode.Pull:
		t = s.Pull
	case episode.Push:
		t = s.Push
	}

	if t == nil {
		return fmt.Errorf("no transfer for %s descriptor %q", d.Kind, d.Name)
	}
	return t.Execute(ctx, d, targetDir, sink)
}
