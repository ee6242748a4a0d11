package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/pharmaflow/internal/app"
	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/model"
)

func newDiscoverCmd(flags *rootFlags) *cobra.Command {
	var (
		indication string
		filters    []string
		wait       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "discover MOLECULE",
		Short: "Run one discovery request in-process and print the results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			req := model.DiscoveryRequest{Molecule: args[0], Indication: indication}
			if req.Filters, err = parseFilters(filters); err != nil {
				return err
			}

			ctx := cmd.Context()
			if wait > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, wait)
				defer cancel()
			}

			rec, err := runDiscover(ctx, &cfg.Config, req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rec); err != nil {
				return err
			}
			if rec.State == model.StateError {
				return fmt.Errorf("request %s failed: %s", rec.ID, rec.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&indication, "indication", "i", "", "therapeutic indication")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value (repeatable)")
	cmd.Flags().DurationVar(&wait, "timeout", 5*time.Minute, "give up waiting after this long (0 waits forever)")
	return cmd
}

func parseFilters(kvs []string) (map[string]string, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", kv)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

// runDiscover submits req to a private orchestrator and waits for it to
// reach a terminal state or for ctx to end.
func runDiscover(ctx context.Context, cfg *app.Config, req model.DiscoveryRequest) (*model.RequestRecord, error) {
	logger := logging.New("discover")

	comps, err := app.NewComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	orch, err := app.NewOrchestrator(cfg, comps, logger)
	if err != nil {
		_ = comps.Close()
		return nil, err
	}
	defer orch.Close(ctx)

	receipt, err := orch.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	_, events, cancel, err := orch.Watch(receipt.RequestID)
	if err != nil {
		return nil, err
	}
	defer cancel()

	for {
		select {
		case _, ok := <-events:
			if ok {
				continue
			}
			return orch.QueryResults(receipt.RequestID)
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", receipt.RequestID, ctx.Err())
		}
	}
}
