package main

import (
	"context"
	"studentbsu/cmd/bsu-cli/commands"
	"studentbsu/internal/components/osutil"
)

func main() {
	ctx, stop := osutil.SignalContext(context.Background())
	defer stop()
	commands.ExecuteContext(ctx)
}
