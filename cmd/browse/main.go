package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"browsekit/cmd/browse/commands"
	"browsekit/lib/telemetry"
)

func main() {
	ctx := context.Background()

	telemetry.InitSlog(false)
	err := telemetry.SetupFromEnv(ctx, "browse")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
